package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/careops/hms-api/internal/domain/patient"
	"github.com/careops/hms-api/internal/service"
)

type PatientHandler struct {
	svc          *service.PatientService
	appointments *service.AppointmentService
	records      *service.MedicalRecordService
	doctors      *service.DoctorService
	attachments  *service.AttachmentService
}

func NewPatientHandler(
	svc *service.PatientService,
	appointments *service.AppointmentService,
	records *service.MedicalRecordService,
	doctors *service.DoctorService,
	attachments *service.AttachmentService,
) *PatientHandler {
	return &PatientHandler{
		svc:          svc,
		appointments: appointments,
		records:      records,
		doctors:      doctors,
		attachments:  attachments,
	}
}

type createPatientRequest struct {
	PatientNumber         string         `json:"patient_number"`
	FirstName             string         `json:"first_name" binding:"required"`
	LastName              string         `json:"last_name" binding:"required"`
	DateOfBirth           string         `json:"date_of_birth" binding:"required"`
	Gender                patient.Gender `json:"gender"`
	BloodType             string         `json:"blood_type"`
	Phone                 string         `json:"phone"`
	Email                 string         `json:"email"`
	Address               string         `json:"address"`
	EmergencyContactName  string         `json:"emergency_contact_name"`
	EmergencyContactPhone string         `json:"emergency_contact_phone"`
	InsuranceProvider     string         `json:"insurance_provider"`
	InsurancePolicyNumber string         `json:"insurance_policy_number"`
	Allergies             string         `json:"allergies"`
}

func (h *PatientHandler) Create(c *gin.Context) {
	var req createPatientRequest
	if !bindJSON(c, &req) {
		return
	}

	dob, err := parseDate(req.DateOfBirth)
	if err != nil {
		respondError(c, http.StatusBadRequest, "date_of_birth must be YYYY-MM-DD")
		return
	}
	if req.Gender != "" && !req.Gender.IsValid() {
		respondServiceError(c, patient.ErrInvalidGender)
		return
	}

	cmd := &patient.CreateCommand{
		PatientNumber:         req.PatientNumber,
		FirstName:             req.FirstName,
		LastName:              req.LastName,
		DateOfBirth:           dob,
		Gender:                req.Gender,
		BloodType:             req.BloodType,
		Phone:                 req.Phone,
		Email:                 req.Email,
		Address:               req.Address,
		EmergencyContactName:  req.EmergencyContactName,
		EmergencyContactPhone: req.EmergencyContactPhone,
		InsuranceProvider:     req.InsuranceProvider,
		InsurancePolicyNumber: req.InsurancePolicyNumber,
		Allergies:             req.Allergies,
	}

	p, err := h.svc.Create(c.Request.Context(), cmd, callerClaims(c), c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *PatientHandler) List(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *PatientHandler) Get(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	p, err := h.svc.Get(c.Request.Context(), id, callerClaims(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

type updatePatientRequest struct {
	Phone                 *string `json:"phone"`
	Email                 *string `json:"email"`
	Address               *string `json:"address"`
	EmergencyContactName  *string `json:"emergency_contact_name"`
	EmergencyContactPhone *string `json:"emergency_contact_phone"`
	InsuranceProvider     *string `json:"insurance_provider"`
	InsurancePolicyNumber *string `json:"insurance_policy_number"`
	Allergies             *string `json:"allergies"`
}

func (h *PatientHandler) Update(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req updatePatientRequest
	if !bindJSON(c, &req) {
		return
	}

	cmd := &patient.UpdateCommand{
		Phone:                 req.Phone,
		Email:                 req.Email,
		Address:               req.Address,
		EmergencyContactName:  req.EmergencyContactName,
		EmergencyContactPhone: req.EmergencyContactPhone,
		InsuranceProvider:     req.InsuranceProvider,
		InsurancePolicyNumber: req.InsurancePolicyNumber,
		Allergies:             req.Allergies,
	}

	p, err := h.svc.Update(c.Request.Context(), id, cmd, callerClaims(c), c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *PatientHandler) Delete(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id, callerClaims(c), c.ClientIP()); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "patient deleted"})
}

func (h *PatientHandler) Appointments(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	list, err := h.appointments.ListByPatient(c.Request.Context(), id, callerClaims(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *PatientHandler) MedicalRecords(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	list, err := h.records.ListByPatient(c.Request.Context(), id, callerClaims(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *PatientHandler) Doctors(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	list, err := h.doctors.ListByPatient(c.Request.Context(), id, callerClaims(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *PatientHandler) Stats(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	stats, err := h.appointments.PatientStats(c.Request.Context(), id, callerClaims(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// UploadAttachment accepts a multipart form with a single "file" part.
func (h *PatientHandler) UploadAttachment(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		respondError(c, http.StatusBadRequest, "multipart file field 'file' is required")
		return
	}

	f, err := fh.Open()
	if err != nil {
		respondError(c, http.StatusBadRequest, "could not read uploaded file")
		return
	}
	defer f.Close()

	a, err := h.attachments.Upload(
		c.Request.Context(),
		id,
		fh.Filename,
		fh.Header.Get("Content-Type"),
		f,
		callerClaims(c),
		c.ClientIP(),
	)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, a)
}

func (h *PatientHandler) ListAttachments(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	list, err := h.attachments.ListByPatient(c.Request.Context(), id, callerClaims(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}
