package backend

// TokenPair is the body of a successful login or refresh.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

// Account is the subset of the account record the client reads.
type Account struct {
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
	Role     string `json:"role,omitempty"`
}

// Product is one asset in the lending catalog.
type Product struct {
	ID      string `json:"id_product"`
	Name    string `json:"name"`
	Stock   int    `json:"stock"`
	Image   string `json:"image,omitempty"`
	AddedBy string `json:"added_by,omitempty"`
}

// ProductList is the body of GET /product/list. A nil Products slice means
// the field was absent.
type ProductList struct {
	Products []Product `json:"product_list"`
}

type errorBody struct {
	Message string `json:"message"`
}

type refreshBody struct {
	RefreshToken string `json:"refresh_token"`
}
