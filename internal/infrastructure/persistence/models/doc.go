// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer pure and free
// from ORM concerns.
//
// Structure:
//   - base.go: base persistence models (BaseModel, TenantAggregateModel, TenantModel)
//   - purchasing.go: purchase invoices, credit note applications and expenses
//   - treasury.go: bank accounts and movements, cash registers, sessions and movements
//   - payment_order.go: payment orders with items, payments, withholdings and their documents
//   - cashflow.go: cashflow projections and document links
//
// AllModels lists every model for AutoMigrate in tests and the sqlite dev driver;
// production schemas come from the SQL migrations.
package models
