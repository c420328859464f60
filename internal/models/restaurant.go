// internal/models/restaurant.go
package models

import "time"

// RestaurantRecord is a durable catalog entry keyed by business id.
// Created by the catalog-loader tool; read-only everywhere else.
type RestaurantRecord struct {
	BusinessID  string    `json:"business_id"`
	Name        string    `json:"name"`
	Address     string    `json:"address"`
	ZipCode     string    `json:"zip_code"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	ReviewCount int       `json:"review_count"`
	Rating      string    `json:"rating"`
	Cuisine     string    `json:"cuisine"`
	InsertedAt  time.Time `json:"insertedAtTimestamp"`
}

// IndexEntry is the disposable search-index projection of a catalog record.
// Field names match the index mapping, both keyword-typed.
type IndexEntry struct {
	RestaurantID string `json:"RestaurantID"`
	Cuisine      string `json:"Cuisine"`
}
