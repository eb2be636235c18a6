package domain

// LPRRequestDTO carries a camera frame from the gate, base64 encoded.
type LPRRequestDTO struct {
	ImageBase64 string `json:"image_base64" binding:"required"`
}

// LPRResponseDTO returns the recognised plate, usable as VehicleInfo.ID.
type LPRResponseDTO struct {
	DetectedPlate string  `json:"detected_plate"`
	Confidence    float32 `json:"confidence,omitempty"`
	ErrorMessage  string  `json:"error_message,omitempty"`
}

// LPREntryRequestDTO is the body of POST /gates/entry/:gate/lpr. ManualPlate
// lets an operator override the camera.
type LPREntryRequestDTO struct {
	ImageBase64 string       `json:"image_base64,omitempty"`
	ManualPlate string       `json:"manual_plate,omitempty"`
	Class       VehicleClass `json:"class,omitempty" binding:"omitempty,oneof=motorcycle compact oversized"`
	Timestamp   string       `json:"timestamp,omitempty"`
}

type LPREntryResponseDTO struct {
	DetectedPlate        string     `json:"detected_plate"`
	Confidence           float32    `json:"confidence"`
	IsManual             bool       `json:"is_manual"`
	RequiresConfirmation bool       `json:"requires_confirmation,omitempty"`
	Ticket               *TicketDTO `json:"ticket,omitempty"`
}
