package auth

import (
	"github.com/Kosench/go-link-shortener/internal/model"
)

// Requester - разрешенная личность вызывающего. nil означает анонима.
type Requester struct {
	UserID  int64
	IsAdmin bool
}

// CanMutate решает, разрешено ли requester изменить или удалить link.
//
// Ссылки, созданные анонимно, может менять кто угодно.
// Авторские ссылки меняет только их автор; админ-обход намеренно
// не предусмотрен даже для IsAdmin.
func CanMutate(link *model.Link, requester *Requester) bool {
	if !link.IsRegistered {
		return true
	}
	if requester == nil {
		return false
	}
	return link.OwnerID != nil && *link.OwnerID == requester.UserID
}
