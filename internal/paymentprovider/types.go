package paymentprovider

// EventCheckoutCompleted — тип события вебхука об успешной оплате.
const EventCheckoutCompleted = "checkout.session.completed"

// CreateCheckoutSessionRequest — параметры создания hosted checkout сессии.
type CreateCheckoutSessionRequest struct {
	ClientReferenceID string `json:"client_reference_id"` // идентификатор тура
	CustomerEmail     string `json:"customer_email"`
	SuccessURL        string `json:"success_url"`
	CancelURL         string `json:"cancel_url"`
	AmountTotal       int64  `json:"amount_total"` // в минорных единицах валюты
	Currency          string `json:"currency"`
	Description       string `json:"description,omitempty"`
}

// CheckoutSession — созданная провайдером сессия оплаты.
type CheckoutSession struct {
	ID                string `json:"id"`
	URL               string `json:"url"` // адрес платёжной страницы для редиректа
	ClientReferenceID string `json:"client_reference_id"`
	CustomerEmail     string `json:"customer_email"`
	AmountTotal       int64  `json:"amount_total"`
	Currency          string `json:"currency"`
}

// Event — событие вебхука платёжного провайдера.
type Event struct {
	Type    string          `json:"type"`
	Session CheckoutSession `json:"data"`
}
