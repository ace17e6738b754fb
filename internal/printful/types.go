package printful

// Product is an entry of the Printful product catalog, e.g. "Unisex Staple T-Shirt".
type Product struct {
	ID             int    `json:"id"`
	MainCategoryID int    `json:"main_category_id"`
	Type           string `json:"type"`
	TypeName       string `json:"type_name"`
	Title          string `json:"title"`
	Brand          string `json:"brand"`
	Model          string `json:"model"`
	Image          string `json:"image"`
	VariantCount   int    `json:"variant_count"`
	Currency       string `json:"currency"`
	IsDiscontinued bool   `json:"is_discontinued"`
}

// Variant is a purchasable size/color combination of a Product.
type Variant struct {
	ID        int    `json:"id"`
	ProductID int    `json:"product_id"`
	Name      string `json:"name"`
	Size      string `json:"size"`
	Color     string `json:"color"`
	ColorCode string `json:"color_code"`
	Image     string `json:"image"`
	// Price is the wholesale price as a decimal string, e.g. "9.25".
	Price   string `json:"price"`
	InStock bool   `json:"in_stock"`
}

// ProductDetail is a catalog product with its variants.
type ProductDetail struct {
	Product  Product   `json:"product"`
	Variants []Variant `json:"variants"`
}

// File is a print file attached to a sync variant or an order item.
type File struct {
	Type string `json:"type,omitempty"`
	URL  string `json:"url"`
}

type SyncProductInfo struct {
	ExternalID string `json:"external_id,omitempty"`
	Name       string `json:"name"`
	Thumbnail  string `json:"thumbnail,omitempty"`
}

type SyncVariantInfo struct {
	ExternalID  string `json:"external_id,omitempty"`
	VariantID   int    `json:"variant_id"`
	RetailPrice string `json:"retail_price,omitempty"`
	Files       []File `json:"files"`
}

// SyncProductRequest creates a store product from a catalog variant and artwork.
type SyncProductRequest struct {
	SyncProduct  SyncProductInfo   `json:"sync_product"`
	SyncVariants []SyncVariantInfo `json:"sync_variants"`
}

// SyncProduct is a product in the Printful store.
type SyncProduct struct {
	ID         int64  `json:"id"`
	ExternalID string `json:"external_id"`
	Name       string `json:"name"`
	Variants   int    `json:"variants"`
	Synced     int    `json:"synced"`
}

type MockupFile struct {
	Placement string `json:"placement"`
	ImageURL  string `json:"image_url"`
}

// MockupRequest asks the mockup generator to render artwork on variants.
type MockupRequest struct {
	VariantIDs []int        `json:"variant_ids"`
	Format     string       `json:"format,omitempty"`
	Files      []MockupFile `json:"files"`
}

type Mockup struct {
	Placement  string `json:"placement"`
	VariantIDs []int  `json:"variant_ids"`
	MockupURL  string `json:"mockup_url"`
}

// Mockup task statuses.
const (
	TaskPending   = "pending"
	TaskCompleted = "completed"
	TaskFailed    = "failed"
)

type MockupTask struct {
	TaskKey string   `json:"task_key"`
	Status  string   `json:"status"`
	Error   string   `json:"error"`
	Mockups []Mockup `json:"mockups"`
}

// Recipient is the shipping address of an order.
type Recipient struct {
	Name        string `json:"name"`
	Company     string `json:"company,omitempty"`
	Address1    string `json:"address1"`
	Address2    string `json:"address2,omitempty"`
	City        string `json:"city"`
	StateCode   string `json:"state_code,omitempty"`
	CountryCode string `json:"country_code"`
	Zip         string `json:"zip"`
	Phone       string `json:"phone,omitempty"`
	Email       string `json:"email"`
}

type OrderItem struct {
	SyncVariantID int64  `json:"sync_variant_id,omitempty"`
	VariantID     int    `json:"variant_id,omitempty"`
	ExternalID    string `json:"external_id,omitempty"`
	Name          string `json:"name,omitempty"`
	Quantity      int    `json:"quantity"`
	RetailPrice   string `json:"retail_price,omitempty"`
	Files         []File `json:"files,omitempty"`
}

// RetailCosts are the amounts charged to the customer, as decimal strings.
type RetailCosts struct {
	Currency string `json:"currency"`
	Subtotal string `json:"subtotal"`
	Discount string `json:"discount"`
	Shipping string `json:"shipping"`
	Tax      string `json:"tax"`
}

type OrderRequest struct {
	ExternalID  string       `json:"external_id"`
	Shipping    string       `json:"shipping"`
	Recipient   Recipient    `json:"recipient"`
	Items       []OrderItem  `json:"items"`
	RetailCosts *RetailCosts `json:"retail_costs,omitempty"`
}

type Order struct {
	ID          int64        `json:"id"`
	ExternalID  string       `json:"external_id"`
	Status      string       `json:"status"`
	Shipping    string       `json:"shipping"`
	Created     int64        `json:"created"`
	Recipient   Recipient    `json:"recipient"`
	Items       []OrderItem  `json:"items"`
	RetailCosts *RetailCosts `json:"retail_costs"`
}
