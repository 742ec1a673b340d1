package auth

import (
	"testing"

	"github.com/Kosench/go-link-shortener/internal/model"
)

func TestCanMutate(t *testing.T) {
	ownerID := int64(1)

	anonymousLink := &model.Link{IsRegistered: false}
	ownedLink := &model.Link{IsRegistered: true, OwnerID: &ownerID}

	tests := []struct {
		name      string
		link      *model.Link
		requester *Requester
		want      bool
	}{
		{"anonymous link, anonymous requester", anonymousLink, nil, true},
		{"anonymous link, any authenticated user", anonymousLink, &Requester{UserID: 42}, true},
		{"owned link, anonymous requester", ownedLink, nil, false},
		{"owned link, owner", ownedLink, &Requester{UserID: 1}, true},
		{"owned link, other user", ownedLink, &Requester{UserID: 2}, false},
		{"owned link, admin is not an override", ownedLink, &Requester{UserID: 2, IsAdmin: true}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanMutate(tt.link, tt.requester); got != tt.want {
				t.Errorf("CanMutate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCanMutateRegisteredWithoutOwner(t *testing.T) {
	// is_registered без owner_id - нарушение инварианта данных;
	// такую ссылку не отдаем на изменение никому.
	link := &model.Link{IsRegistered: true, OwnerID: nil}

	if CanMutate(link, &Requester{UserID: 1}) {
		t.Error("CanMutate() = true for registered link without owner, want false")
	}
}
