package requests

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaskPhoneNumbers(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Ulaşmak için 0535 646 87 47 arayın", "Ulaşmak için (53)5646-**** arayın"},
		{"+90 532 423 05 71", "(53)2423-****"},
		{"0212-345-67-89", "(21)2345-****"},
		{"535 646 87 47 ya da 0536 777 88 99", "(53)5646-**** ya da (53)6777-****"},
		// short digit runs stay put
		{"Akasya Cd. No: 12, kat 3", "Akasya Cd. No: 12, kat 3"},
		{"acil durumda 112", "acil durumda 112"},
		{"12345678", "12345678"},
		{"", ""},
		{"hiç numara yok", "hiç numara yok"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, MaskPhoneNumbers(tc.in), "input %q", tc.in)
	}
}

func TestMaskPhoneNumbersNineDigits(t *testing.T) {
	// nine digits keep their trailing eight in the masked shape
	assert.Equal(t, "2345-****", MaskPhoneNumbers("123456789"))
}

func redactedFixture() HelpRequest {
	donor := "donor-1"
	return HelpRequest{
		ID:          "req-1",
		RecipientID: "recipient-1",
		DonorID:     &donor,
		Title:       "Bebek maması ve bez",
		Description: "Teslimat için 0535 646 87 47 numarasını arayın",
		Status:      StatusApproved,
		Pickup: PickupLocation{
			Address: "Cumhuriyet Mah. 0535 646 87 47",
			ZipCode: "31030",
		},
		Notes: NoteList{
			{AuthorID: "recipient-1", Text: "kapı kodu 1907", CreatedAt: testNow},
		},
	}
}

func TestRedactForViewerPartiesSeeEverything(t *testing.T) {
	req := redactedFixture()

	for _, viewer := range []string{"recipient-1", "donor-1"} {
		out := RedactForViewer(req, viewer)
		assert.Equal(t, req.Description, out.Description, "viewer %s", viewer)
		assert.Equal(t, req.Pickup.Address, out.Pickup.Address, "viewer %s", viewer)
		require.Len(t, out.Notes, 1, "viewer %s", viewer)
	}
}

func TestRedactForViewerStrangersGetMaskedCopy(t *testing.T) {
	req := redactedFixture()

	out := RedactForViewer(req, "stranger")
	assert.Equal(t, "Teslimat için (53)5646-**** numarasını arayın", out.Description)
	assert.Equal(t, "Cumhuriyet Mah. (53)5646-****", out.Pickup.Address)
	assert.Nil(t, out.Notes)
	assert.Equal(t, req.Title, out.Title)
	assert.Equal(t, req.Pickup.ZipCode, out.Pickup.ZipCode)
}

func TestRedactForViewerAnonymous(t *testing.T) {
	out := RedactForViewer(redactedFixture(), "")
	assert.Nil(t, out.Notes)
	assert.Contains(t, out.Description, "****")
}

func TestRedactForViewerDoesNotMutateInput(t *testing.T) {
	req := redactedFixture()
	_ = RedactForViewer(req, "stranger")

	assert.Contains(t, req.Description, "0535 646 87 47")
	assert.Contains(t, req.Pickup.Address, "0535 646 87 47")
	assert.Len(t, req.Notes, 1)
}
