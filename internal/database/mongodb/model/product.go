package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Product struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name        string             `json:"name" bson:"name"`
	SKU         string             `json:"sku,omitempty" bson:"sku,omitempty"`
	Description string             `json:"description,omitempty" bson:"description,omitempty"`
	Price       float64            `json:"price" bson:"price"`
	GSTRate     float64            `json:"gstRate" bson:"gstRate"` // 百分比，例如 18
	Stock       int64              `json:"stock" bson:"stock"`
	Unit        string             `json:"unit,omitempty" bson:"unit,omitempty"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt" bson:"updatedAt"`
}
