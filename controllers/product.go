package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/awsomeshop/rewards-be/models"
	"github.com/awsomeshop/rewards-be/services"
)

type ProductController struct {
	productService *services.ProductService
}

func NewProductController() *ProductController {
	return &ProductController{
		productService: services.NewProductService(),
	}
}

// GetProducts lists the public catalog. Only active products are shown.
func (pc *ProductController) GetProducts(c *gin.Context) {
	page, pageSize := pageParams(c)
	availableOnly, _ := strconv.ParseBool(c.DefaultQuery("available_only", "false"))

	products, total, err := pc.productService.ListProducts(services.ProductFilter{
		Status:        models.ProductActive,
		Category:      c.Query("category"),
		Search:        c.Query("search"),
		AvailableOnly: availableOnly,
		Page:          page,
		PageSize:      pageSize,
	})
	if err != nil {
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch products", nil)
		return
	}

	page, pageSize = services.NormalizePage(page, pageSize)
	c.JSON(http.StatusOK, services.NewPage(products, total, page, pageSize))
}

func (pc *ProductController) GetCategories(c *gin.Context) {
	categories, err := pc.productService.GetCategories()
	if err != nil {
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch categories", nil)
		return
	}
	if categories == nil {
		categories = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

func (pc *ProductController) GetProduct(c *gin.Context) {
	productID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid product id", nil)
		return
	}

	product, err := pc.productService.GetProductByID(uint(productID))
	if err != nil {
		if errors.Is(err, services.ErrProductNotFound) {
			respondError(c, http.StatusNotFound, "PRODUCT_NOT_FOUND", "Product not found", nil)
			return
		}
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch product", nil)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"product":      product,
		"is_available": product.IsAvailable(),
	})
}
