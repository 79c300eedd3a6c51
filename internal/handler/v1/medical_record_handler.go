package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/careops/hms-api/internal/domain/medicalrecord"
	"github.com/careops/hms-api/internal/service"
)

type MedicalRecordHandler struct {
	svc *service.MedicalRecordService
}

func NewMedicalRecordHandler(svc *service.MedicalRecordService) *MedicalRecordHandler {
	return &MedicalRecordHandler{svc: svc}
}

type createRecordRequest struct {
	PatientID    uuid.UUID `json:"patient_id" binding:"required"`
	DoctorID     uuid.UUID `json:"doctor_id"`
	VisitDate    string    `json:"visit_date"`
	Diagnosis    string    `json:"diagnosis" binding:"required"`
	Treatment    string    `json:"treatment"`
	Prescription string    `json:"prescription"`
	LabResults   string    `json:"lab_results"`
	Notes        string    `json:"notes"`
}

func (h *MedicalRecordHandler) Create(c *gin.Context) {
	var req createRecordRequest
	if !bindJSON(c, &req) {
		return
	}

	cmd := &medicalrecord.CreateCommand{
		PatientID:    req.PatientID,
		DoctorID:     req.DoctorID,
		Diagnosis:    req.Diagnosis,
		Treatment:    req.Treatment,
		Prescription: req.Prescription,
		LabResults:   req.LabResults,
		Notes:        req.Notes,
	}
	if req.VisitDate != "" {
		d, err := parseDate(req.VisitDate)
		if err != nil {
			respondError(c, http.StatusBadRequest, "visit_date must be YYYY-MM-DD")
			return
		}
		cmd.VisitDate = d
	}

	rec, err := h.svc.Create(c.Request.Context(), cmd, callerClaims(c), c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rec)
}

func (h *MedicalRecordHandler) List(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *MedicalRecordHandler) Delete(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id, callerClaims(c), c.ClientIP()); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "medical record deleted"})
}
