// Package models holds the gorm row types for the shopbill tables and the
// mappers between them and the domain aggregates. Domain types carry no
// gorm tags; repositories read and write only these models.
//
// Money columns are DECIMAL(18,2) mapped to decimal.Decimal. Every table
// carries tenant_id, and unique indexes are scoped by it.
package models
