package lifecycle

import "github.com/MathiAviles/abogapp/internal/model"

// ApprovalFacts are the user attributes account approval depends on.
type ApprovalFacts struct {
	Role          string
	EmailVerified bool
	KYCStatus     string
}

// ComputeApproval decides users.is_approved.  Every account needs a
// verified email; lawyers additionally need an approved KYC review.
func ComputeApproval(f ApprovalFacts) bool {
	if !f.EmailVerified {
		return false
	}
	if f.Role == model.RoleLawyer {
		return f.KYCStatus == model.KYCApproved
	}
	return true
}
