package in

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	backendin "fasttrack/internal/modules/backend/port/in"
	fastingdto "fasttrack/internal/modules/fasting/dto"
	apperrors "fasttrack/internal/platform/errors"
)

type RecordHandler struct {
	usecase backendin.Usecase
}

func NewRecordHandler(usecase backendin.Usecase) *RecordHandler {
	return &RecordHandler{usecase: usecase}
}

func (h *RecordHandler) ListRecords(c *gin.Context) {
	rows, err := h.usecase.List(c.Request.Context(), UserIDFromContext(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, fastingdto.RowList{Records: rows})
}

func (h *RecordHandler) GetRecord(c *gin.Context) {
	row, err := h.usecase.Get(c.Request.Context(), UserIDFromContext(c), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, row)
}

func (h *RecordHandler) CreateRecord(c *gin.Context) {
	var body fastingdto.Row
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json body"})
		return
	}
	row, err := h.usecase.Create(c.Request.Context(), UserIDFromContext(c), body)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, row)
}

func (h *RecordHandler) UpdateRecord(c *gin.Context) {
	var body fastingdto.Row
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json body"})
		return
	}
	row, err := h.usecase.Update(c.Request.Context(), UserIDFromContext(c), c.Param("id"), body)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, row)
}

func (h *RecordHandler) DeleteRecord(c *gin.Context) {
	if err := h.usecase.Delete(c.Request.Context(), UserIDFromContext(c), c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *RecordHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, apperrors.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
