package httpserver

import (
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/dvelkov/toystore/internal/handlers"
	"github.com/dvelkov/toystore/internal/handlers/cart"
	"github.com/dvelkov/toystore/internal/service"
)

type Deps struct {
	DB              *gorm.DB
	AuthHandler     *handlers.AuthHandler
	ProductHandler  *handlers.ProductHandler
	SearchHandler   *handlers.SearchHandler
	CartHandler     *cart.CartHandler
	CheckoutHandler *handlers.CheckoutHandler
	OrderHandler    *handlers.OrderHandler
	SalesHandler    *handlers.SalesHandler
	CustomerHandler *handlers.CustomerHandler
	UserHandler     *handlers.UserHandler
	TokenService    *service.TokenService
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(200) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(200) })

	v1 := e.Group("/api/v1")

	v1.POST("/auth/register", d.AuthHandler.Register)
	v1.POST("/auth/login", d.AuthHandler.Login)
	v1.POST("/auth/logout", d.AuthHandler.LogOut)

	// Public storefront: catalog, search, cart, checkout.
	v1.GET("/products", d.ProductHandler.GetProducts)
	v1.GET("/products/:id", d.ProductHandler.GetProduct)
	v1.GET("/search", d.SearchHandler.Search)

	cartg := v1.Group("/cart")
	cartg.GET("", d.CartHandler.GetCart)
	cartg.POST("", d.CartHandler.AddToCart)
	cartg.PATCH("/:productId", d.CartHandler.SetQuantity)
	cartg.DELETE("/:productId", d.CartHandler.RemoveFromCart)
	cartg.DELETE("", d.CartHandler.ClearCart)

	v1.POST("/checkout", d.CheckoutHandler.Submit)
	v1.GET("/checkout/profile", d.CheckoutHandler.GetProfile)

	// Back office: any staff member.
	staff := v1.Group("/staff", d.TokenService.AutoRefreshMiddleware)
	staff.GET("/orders", d.OrderHandler.ListOrders)
	staff.GET("/orders/:id", d.OrderHandler.GetOrder)
	staff.PATCH("/orders/:id/status", d.OrderHandler.UpdateStatus)
	staff.POST("/sales", d.SalesHandler.RecordSale)
	staff.GET("/sales", d.SalesHandler.ListSales)
	staff.GET("/stats", d.SalesHandler.GetStats)

	// Management: admin role only.
	admin := v1.Group("/admin", d.TokenService.AutoRefreshMiddlewareAdmin)
	admin.POST("/products", d.ProductHandler.CreateProduct)
	admin.PATCH("/products/:id", d.ProductHandler.PatchProduct)
	admin.DELETE("/products/:id", d.ProductHandler.DeleteProduct)
	admin.GET("/customers", d.CustomerHandler.ListCustomers)
	admin.GET("/customers/:id", d.CustomerHandler.GetCustomer)
	admin.GET("/users", d.UserHandler.ListUsers)
	admin.PATCH("/users/:id/role", d.UserHandler.UpdateRole)
	admin.DELETE("/users/:id", d.UserHandler.DeleteUser)
	admin.POST("/invite", d.UserHandler.Invite)
}
