package store

// Equipment is a snapshot of one inventory item as read from a backend database.
type Equipment struct {
	Serial       string `json:"serial"`
	HwSerial     string `json:"hw_serial,omitempty"`
	InventoryNo  string `json:"inventory_no,omitempty"`
	Type         string `json:"type,omitempty"`
	Model        string `json:"model,omitempty"`
	Manufacturer string `json:"manufacturer,omitempty"`
	Employee     string `json:"employee,omitempty"`
	Department   string `json:"department,omitempty"`
	Branch       string `json:"branch,omitempty"`
	Location     string `json:"location,omitempty"`
	Status       string `json:"status,omitempty"`
	Description  string `json:"description,omitempty"`
}
