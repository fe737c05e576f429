package dto

type CreateTicketOrderRequest struct {
	UserID     string `json:"user_id"`
	Quantity   int    `json:"quantity"`
	MpesaPhone string `json:"mpesa_phone"`
}

type BookStallRequest struct {
	VendorID        string `json:"vendor_id"`
	EventID         uint   `json:"event_id"`
	StallTypeID     uint   `json:"stall_type_id"`
	BusinessName    string `json:"business_name"`
	ProductsOffered string `json:"products_offered"`
	MpesaPhone      string `json:"mpesa_phone"`
}

type CheckInRequest struct {
	QRData  string `json:"qr_data"`
	StaffID string `json:"staff_id"`
}
