package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/careops/hms-api/internal/domain/department"
	"github.com/careops/hms-api/internal/service"
)

type DepartmentHandler struct {
	svc *service.DepartmentService
}

func NewDepartmentHandler(svc *service.DepartmentService) *DepartmentHandler {
	return &DepartmentHandler{svc: svc}
}

type createDepartmentRequest struct {
	Name         string     `json:"department_name" binding:"required"`
	HeadDoctorID *uuid.UUID `json:"head_doctor_id"`
	Location     string     `json:"location"`
	Phone        string     `json:"phone"`
}

func (h *DepartmentHandler) Create(c *gin.Context) {
	var req createDepartmentRequest
	if !bindJSON(c, &req) {
		return
	}

	d := &department.Department{
		Name:         req.Name,
		HeadDoctorID: req.HeadDoctorID,
		Location:     req.Location,
		Phone:        req.Phone,
	}
	if err := h.svc.Create(c.Request.Context(), d, callerClaims(c), c.ClientIP()); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, d)
}

func (h *DepartmentHandler) List(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *DepartmentHandler) Delete(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id, callerClaims(c), c.ClientIP()); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "department deleted"})
}
