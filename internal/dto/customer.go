package dto

type CreateCustomerDto struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"omitempty,email"`
	Phone   string `json:"phone"`
	GSTIN   string `json:"gstin"`
	State   string `json:"state" binding:"required"`
	Address string `json:"address"`
}

type UpdateCustomerDto struct {
	Name    *string `json:"name"`
	Email   *string `json:"email" binding:"omitempty,email"`
	Phone   *string `json:"phone"`
	GSTIN   *string `json:"gstin"`
	State   *string `json:"state"`
	Address *string `json:"address"`
}
