package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	DefaultCurrency     = "USD"
	DefaultCategory     = "general"
	DefaultCountry      = "US"
	DefaultStock        = 100
	DefaultBusinessType = BusinessTypeIndividual
)

const (
	BusinessTypeIndividual  = "individual"
	BusinessTypeBusiness    = "business"
	BusinessTypeCorporation = "corporation"
)

type Address struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zipCode"`
	Country string `json:"country"`
}

type Seller struct {
	Name         string  `json:"name"`
	Email        string  `json:"email"`
	Phone        string  `json:"phone"`
	Address      Address `json:"address"`
	BusinessName string  `json:"businessName"`
	BusinessType string  `json:"businessType"` // individual, business, corporation
}

type Ratings struct {
	Average float64 `json:"average"` // 0..5
	Count   int     `json:"count"`
}

type Product struct {
	ID          string          `json:"_id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image"`
	Description string          `json:"description"`
	Currency    string          `json:"currency"`
	Category    string          `json:"category"`
	Stock       int             `json:"stock"`
	IsActive    bool            `json:"isActive"`
	Seller      Seller          `json:"seller"`
	Ratings     Ratings         `json:"ratings"`
	Tags        []string        `json:"tags"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// ProductInput is the request body of catalog writes. A nil field was not supplied.
type ProductInput struct {
	Name        *string          `json:"name"`
	Price       *decimal.Decimal `json:"price"`
	Image       *string          `json:"image"`
	Description *string          `json:"description"`
	Currency    *string          `json:"currency"`
	Category    *string          `json:"category"`
	Stock       *int             `json:"stock"`
	IsActive    *bool            `json:"isActive"`
	Seller      *SellerInput     `json:"seller"`
	Ratings     *Ratings         `json:"ratings"`
	Tags        *[]string        `json:"tags"`
}

type SellerInput struct {
	Name         string   `json:"name"`
	Email        string   `json:"email"`
	Phone        string   `json:"phone"`
	Address      *Address `json:"address"`
	BusinessName string   `json:"businessName"`
	BusinessType string   `json:"businessType"`
}

/*
Schema MySQL for products table: see migrations.AutoMigrateProducts.
seller and tags are stored as JSON text columns.
*/
