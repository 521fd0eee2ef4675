package handlers

import (
	"tengemart/internal/marketplace"
	"tengemart/internal/notifications"
	"tengemart/internal/orders"
	"tengemart/internal/session"
)

type Deps struct {
	AuthHandler         *AuthHandler
	ProductHandler      *ProductHandler
	OrderHandler        *OrderHandler
	ProfileHandler      *ProfileHandler
	NotificationHandler *NotificationHandler
}

func NewDeps(api *marketplace.Client, sessions *session.Store, hub *notifications.Hub) *Deps {
	coord := orders.NewCoordinator(api)

	return &Deps{
		AuthHandler:         &AuthHandler{API: api, Sessions: sessions, Hub: hub},
		ProductHandler:      &ProductHandler{API: api},
		OrderHandler:        &OrderHandler{API: api, Coord: coord},
		ProfileHandler:      &ProfileHandler{API: api, Sessions: sessions},
		NotificationHandler: &NotificationHandler{Hub: hub},
	}
}
