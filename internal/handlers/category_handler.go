package handlers

import (
	"net/http"

	"exam-service/internal/middleware"
	"exam-service/internal/models"
	"exam-service/internal/service"

	"github.com/gin-gonic/gin"
)

type CategoryHandler struct {
	Service *service.CategoryService
}

func NewCategoryHandler(s *service.CategoryService) *CategoryHandler {
	return &CategoryHandler{Service: s}
}

func (h *CategoryHandler) ListCategories(c *gin.Context) {
	categories, err := h.Service.ListCategories(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

func (h *CategoryHandler) GetCategory(c *gin.Context) {
	category, err := h.Service.GetCategory(c.Request.Context(), c.Param("slug"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, category)
}

func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	principal := middleware.PrincipalFrom(c)

	var req struct {
		Title string      `json:"title" binding:"required"`
		Tier  models.Tier `json:"tier"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "title is required"})
		return
	}

	category, err := h.Service.CreateCategory(c.Request.Context(), service.CreateCategoryInput{
		Title:  req.Title,
		UserID: principal.ID,
		Tier:   req.Tier,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"category": category, "message": "Category saved"})
}

func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	var req struct {
		Title     *string      `json:"title"`
		Tier      *models.Tier `json:"tier"`
		IsVisible *bool        `json:"isVisible"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
		return
	}

	category, err := h.Service.UpdateCategory(c.Request.Context(), c.Param("id"), service.UpdateCategoryInput{
		Title:     req.Title,
		Tier:      req.Tier,
		IsVisible: req.IsVisible,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"category": category, "message": "Category updated"})
}

func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	if err := h.Service.DeleteCategory(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Category, corresponding exams, and related questions and images deleted successfully"})
}
