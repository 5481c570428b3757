package dto

import "invoicely/internal/domain/purchase"

// PurchaseSavedResponse is returned after a create or update. Totals are the
// ones that were sent to the backend.
type PurchaseSavedResponse struct {
	Purchase purchase.Purchase `json:"purchase"`
	Totals   TotalsResponse    `json:"totals"`
}
