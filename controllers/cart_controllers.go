package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-site/models"
	"github.com/yeremiapane/restaurant-site/services"
	"github.com/yeremiapane/restaurant-site/utils"
	"gorm.io/gorm"
)

type CartController struct {
	DB    *gorm.DB
	Carts *services.CartStore
}

func NewCartController(db *gorm.DB, carts *services.CartStore) *CartController {
	return &CartController{DB: db, Carts: carts}
}

// OpenCart -> starts an empty cart
func (cc *CartController) OpenCart(c *gin.Context) {
	utils.RespondJSON(c, http.StatusCreated, "Cart created", cc.Carts.Open())
}

func (cc *CartController) GetCart(c *gin.Context) {
	cart, err := cc.Carts.Get(c.Param("cart_id"))
	if err != nil {
		respondServiceError(c, "loading cart", err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Cart", cart)
}

// AddItem -> adds a menu item, or bumps its quantity when already in the cart
func (cc *CartController) AddItem(c *gin.Context) {
	var req struct {
		MenuItemID uint `json:"menu_item_id" binding:"required"`
		Quantity   int  `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if req.Quantity <= 0 {
		req.Quantity = 1
	}

	var item models.MenuItem
	if err := cc.DB.First(&item, req.MenuItemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondError(c, http.StatusNotFound, services.ErrMenuItemNotFound)
			return
		}
		respondServiceError(c, "loading menu item", err)
		return
	}
	if !item.IsAvailable {
		utils.RespondError(c, http.StatusBadRequest, errors.New(item.Name+" is currently unavailable"))
		return
	}

	cart, err := cc.Carts.Add(c.Param("cart_id"), item, req.Quantity)
	if err != nil {
		respondServiceError(c, "adding to cart", err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, item.Name+" added to cart", cart)
}

// UpdateItem -> sets the quantity; zero or less removes the line
func (cc *CartController) UpdateItem(c *gin.Context) {
	itemID, err := parseIDParam(c, "item_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	cart, err := cc.Carts.UpdateQuantity(c.Param("cart_id"), itemID, req.Quantity)
	if err != nil {
		respondServiceError(c, "updating cart", err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Cart updated", cart)
}

func (cc *CartController) RemoveItem(c *gin.Context) {
	itemID, err := parseIDParam(c, "item_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	cart, err := cc.Carts.Remove(c.Param("cart_id"), itemID)
	if err != nil {
		respondServiceError(c, "removing from cart", err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Item removed", cart)
}

func (cc *CartController) ClearCart(c *gin.Context) {
	cartID := c.Param("cart_id")
	if err := cc.Carts.Clear(cartID); err != nil {
		respondServiceError(c, "clearing cart", err)
		return
	}
	cart, _ := cc.Carts.Get(cartID)
	utils.RespondJSON(c, http.StatusOK, "Cart cleared", cart)
}
