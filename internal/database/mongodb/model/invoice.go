package model

import (
	"time"

	"billstack/internal/core"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type InvoiceItem struct {
	ProductID string  `json:"productId" bson:"productId"`
	Name      string  `json:"name" bson:"name"`
	Quantity  int64   `json:"quantity" bson:"quantity"`
	Price     float64 `json:"price" bson:"price"`     // 單價
	GSTRate   float64 `json:"gstRate" bson:"gstRate"` // 百分比
	Amount    float64 `json:"amount" bson:"amount"`   // 數量 × 單價
}

// Invoice 稅額欄位依州別拆分：買賣雙方同州時 CGST+SGST 各半，
// 跨州時整筆走 IGST。
type Invoice struct {
	ID            primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Number        string             `json:"number" bson:"number"`
	CustomerID    string             `json:"customerId" bson:"customerId"`
	CustomerName  string             `json:"customerName" bson:"customerName"`
	CustomerState string             `json:"customerState" bson:"customerState"`
	Items         []InvoiceItem      `json:"items" bson:"items"`
	Subtotal      float64            `json:"subtotal" bson:"subtotal"`
	CGST          float64            `json:"cgst" bson:"cgst"`
	SGST          float64            `json:"sgst" bson:"sgst"`
	IGST          float64            `json:"igst" bson:"igst"`
	RoundOff      float64            `json:"roundOff" bson:"roundOff"`
	Total         float64            `json:"total" bson:"total"`
	Status        core.InvoiceStatus `json:"status" bson:"status"`
	IssuedAt      time.Time          `json:"issuedAt" bson:"issuedAt"`
	DueAt         *time.Time         `json:"dueAt,omitempty" bson:"dueAt,omitempty"`
	CreatedAt     time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt" bson:"updatedAt"`
}
