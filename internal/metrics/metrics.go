// Package metrics содержит счётчики Prometheus для бизнес-операций.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TopupsCredited количество успешно зачисленных пополнений кошелька.
	TopupsCredited = promauto.NewCounter(prometheus.CounterOpts{
		Name: "meetexpert_wallet_topups_credited_total",
		Help: "Total number of wallet topups credited via the payment gateway.",
	})

	// TopupsFailed количество неуспешных пополнений.
	TopupsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "meetexpert_wallet_topups_failed_total",
		Help: "Total number of failed wallet topups.",
	})

	// SubscriptionsPurchased количество купленных подписок.
	SubscriptionsPurchased = promauto.NewCounter(prometheus.CounterOpts{
		Name: "meetexpert_subscriptions_purchased_total",
		Help: "Total number of purchased subscriptions.",
	})

	// PurchasesRejected отклонённые покупки по причинам (duplicate, insufficient_balance, not_purchasable).
	PurchasesRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "meetexpert_purchases_rejected_total",
		Help: "Total number of rejected subscription purchases by reason.",
	}, []string{"reason"})
)
