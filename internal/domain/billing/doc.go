// Package billing holds the invoice and payment model of a shop.
//
// Key Aggregates:
//   - Invoice: owns its line items, monetary totals, status and the
//     stock-applied marker that freezes it after finalization
//
// Entities:
//   - InvoiceItem: a line with quantity, unit price and tax rate snapshot
//   - Payment: an append-only record of money received against an invoice
//
// Stock is owned by the inventory domain. Finalizing an invoice hands the
// aggregated product quantities to the stock ledger within the same
// transaction; this package never mutates stock itself.
package billing
