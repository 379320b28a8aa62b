package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func inquiryIn(status Status) *Inquiry {
	return &Inquiry{ID: "inq-1", BuyerID: "buyer-1", SellerID: "seller-1", Status: status}
}

var (
	buyer    = Viewer{UserID: "buyer-1", Role: RoleBuyer}
	seller   = Viewer{UserID: "seller-1", Role: RoleSeller}
	admin    = Viewer{UserID: "admin-1", Role: RoleAdmin}
	stranger = Viewer{UserID: "buyer-2", Role: RoleBuyer}
)

func TestCheckStatusChange_Seller(t *testing.T) {
	assert.NoError(t, CheckStatusChange(inquiryIn(StatusNew), StatusRead, seller))
	assert.NoError(t, CheckStatusChange(inquiryIn(StatusNew), StatusReplied, seller))
	assert.NoError(t, CheckStatusChange(inquiryIn(StatusRead), StatusReplied, seller))
	assert.NoError(t, CheckStatusChange(inquiryIn(StatusReplied), StatusClosed, seller))

	assert.ErrorIs(t, CheckStatusChange(inquiryIn(StatusReplied), StatusRead, seller), ErrInvalidTransition)
	assert.ErrorIs(t, CheckStatusChange(inquiryIn(StatusClosed), StatusClosed, seller), ErrInvalidTransition)
	assert.ErrorIs(t, CheckStatusChange(inquiryIn(StatusRead), StatusNew, seller), ErrInvalidTransition)
}

func TestCheckStatusChange_Buyer(t *testing.T) {
	assert.NoError(t, CheckStatusChange(inquiryIn(StatusNew), StatusClosed, buyer))
	assert.ErrorIs(t, CheckStatusChange(inquiryIn(StatusNew), StatusRead, buyer), ErrForbidden)
	assert.ErrorIs(t, CheckStatusChange(inquiryIn(StatusNew), StatusReplied, buyer), ErrForbidden)
}

func TestCheckStatusChange_Outsiders(t *testing.T) {
	assert.ErrorIs(t, CheckStatusChange(inquiryIn(StatusNew), StatusClosed, stranger), ErrForbidden)
	assert.ErrorIs(t, CheckStatusChange(inquiryIn(StatusNew), StatusClosed, Viewer{}), ErrForbidden)
	assert.NoError(t, CheckStatusChange(inquiryIn(StatusNew), StatusRead, admin))
	assert.ErrorIs(t, CheckStatusChange(inquiryIn(StatusNew), "archived", admin), ErrInvalidInput)
}

func TestInquiryInput_Validate(t *testing.T) {
	assert.NoError(t, InquiryInput{Message: "Is the garden south facing?"}.Validate())
	assert.ErrorIs(t, InquiryInput{Message: "   "}.Validate(), ErrInvalidInput)
	assert.ErrorIs(t, InquiryInput{Message: "hi", ContactEmail: "nope"}.Validate(), ErrInvalidInput)

	long := make([]byte, maxMessageLength+1)
	for i := range long {
		long[i] = 'a'
	}
	assert.ErrorIs(t, InquiryInput{Message: string(long)}.Validate(), ErrInvalidInput)
}
