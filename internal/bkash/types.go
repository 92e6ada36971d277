package bkash

// grantTokenResponse ответ шлюза на выдачу токена.
type grantTokenResponse struct {
	IDToken   string `json:"id_token"`
	TokenType string `json:"token_type"`
	ExpiresIn int64  `json:"expires_in"`
	Msg       string `json:"msg"`
}

// createPaymentRequest тело запроса на создание платежа (tokenized checkout).
type createPaymentRequest struct {
	Mode                  string `json:"mode"`
	PayerReference        string `json:"payerReference"`
	CallbackURL           string `json:"callbackURL"`
	Amount                string `json:"amount"`
	Currency              string `json:"currency"`
	Intent                string `json:"intent"`
	MerchantInvoiceNumber string `json:"merchantInvoiceNumber"`
}

type createPaymentResponse struct {
	PaymentID  string `json:"paymentID"`
	BkashURL   string `json:"bkashURL"`
	StatusCode string `json:"statusCode"`
	StatusMsg  string `json:"statusMessage"`
}

type executePaymentRequest struct {
	PaymentID string `json:"paymentID"`
}

type executePaymentResponse struct {
	PaymentID             string `json:"paymentID"`
	TrxID                 string `json:"trxID"`
	TransactionStatus     string `json:"transactionStatus"`
	Amount                string `json:"amount"`
	Currency              string `json:"currency"`
	MerchantInvoiceNumber string `json:"merchantInvoiceNumber"`
	StatusCode            string `json:"statusCode"`
	StatusMsg             string `json:"statusMessage"`
}

// CreatedPayment результат создания платежа: идентификатор и URL страницы оплаты.
type CreatedPayment struct {
	PaymentID string
	BkashURL  string
}

// ExecutedPayment результат подтверждения платежа шлюзом.
type ExecutedPayment struct {
	PaymentID string
	TrxID     string
	Amount    string
}
