package pipedrive

// Pipedrive wraps every response in a success envelope. Data is decoded per
// call into the type the endpoint returns.

type contactField struct {
	Value   string `json:"value"`
	Primary bool   `json:"primary"`
}

type personRequest struct {
	Name  string         `json:"name"`
	Email []contactField `json:"email,omitempty"`
	Phone []contactField `json:"phone,omitempty"`
}

type productPrice struct {
	Price    float64 `json:"price"`
	Currency string  `json:"currency"`
}

type productRequest struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Prices      []productPrice `json:"prices,omitempty"`
}

type dealRequest struct {
	Title    string `json:"title"`
	PersonID int64  `json:"person_id,omitempty"`
	Status   string `json:"status,omitempty"`
}

type dealProductRequest struct {
	ProductID int64   `json:"product_id"`
	ItemPrice float64 `json:"item_price"`
	Quantity  int     `json:"quantity"`
}

type leadValue struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

type leadRequest struct {
	Title    string     `json:"title"`
	PersonID int64      `json:"person_id,omitempty"`
	Value    *leadValue `json:"value,omitempty"`
}

type webhookRequest struct {
	SubscriptionURL string `json:"subscription_url"`
	EventAction     string `json:"event_action"`
	EventObject     string `json:"event_object"`
}

type idData struct {
	ID int64 `json:"id"`
}

// Lead ids are uuids, every other Pipedrive id is numeric.
type leadData struct {
	ID string `json:"id"`
}

type dealProductData struct {
	ID        int64   `json:"id"`
	ProductID int64   `json:"product_id"`
	ItemPrice float64 `json:"item_price"`
	Quantity  int     `json:"quantity"`
}
