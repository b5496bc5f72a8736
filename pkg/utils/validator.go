package utils

import (
	"fmt"

	"github.com/claimdesk/claimdesk/internal/domain/entity"
)

// ValidateClaim checks a claim's fields before submission or edit.
// Food and Laundry claims skip the receipt and description requirements.
func ValidateClaim(claim *entity.Claim) error {
	if !claim.Category.Valid() {
		return fmt.Errorf("invalid category: %s", claim.Category)
	}

	if claim.Amount < 0 {
		return fmt.Errorf("amount must not be negative: %.2f", claim.Amount)
	}

	if claim.Date == "" {
		return fmt.Errorf("date is required")
	}

	if len(claim.Approvers) == 0 {
		return fmt.Errorf("at least one approver is required")
	}

	exempt := claim.Category == entity.CategoryFood || claim.Category == entity.CategoryLaundry
	if !exempt {
		if claim.Description == "" {
			return fmt.Errorf("description is required for %s claims", claim.Category)
		}
		if len(claim.ProofURLs) == 0 {
			return fmt.Errorf("receipt is required for %s claims", claim.Category)
		}
	}

	if claim.Category == entity.CategoryFood {
		if len(claim.MealTypes) == 0 {
			return fmt.Errorf("at least one meal is required for Food claims")
		}
		for _, meal := range claim.MealTypes {
			if _, ok := entity.MealAllowances[meal]; !ok {
				return fmt.Errorf("invalid meal type: %s", meal)
			}
		}
	}

	return nil
}

// ValidateIdentity checks that a caller identity is complete
func ValidateIdentity(id entity.Identity) error {
	if id.ID == "" {
		return fmt.Errorf("user id is required")
	}
	if id.Name == "" {
		return fmt.Errorf("user name is required")
	}
	return nil
}
