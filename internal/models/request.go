package models

type CreateCartRequest struct {
	// Optional seed from the product page
	DefaultSize string `json:"size,omitempty" example:"4X6"`
	PaperType   string `json:"paperType,omitempty" example:"Luster"`
}

type UpdateImageRequest struct {
	Size     *string `json:"size,omitempty" example:"5X7"`
	Quantity *int    `json:"quantity,omitempty" example:"5"`
}

type EditImageRequest struct {
	// Crop rectangle in the coordinate space of the rotated image
	X        int `json:"x"`
	Y        int `json:"y"`
	Width    int `json:"width" binding:"required"`
	Height   int `json:"height" binding:"required"`
	Rotation int `json:"rotation"` // degrees, any integer
}

type SelectionRequest struct {
	PaperType   *string `json:"paperType,omitempty" example:"Glossy"`
	DefaultSize *string `json:"defaultSize,omitempty" example:"4X6"`
}

type PromoRequest struct {
	Code string `json:"code" binding:"required" example:"HALFOFF"`
}

type AddressRequest struct {
	Name    *string `json:"name,omitempty"`
	Phone   *string `json:"phone,omitempty"`
	Street  *string `json:"street,omitempty"`
	City    *string `json:"city,omitempty"`
	Emirate *string `json:"emirate,omitempty"`
}

type LocationRequest struct {
	Lat float64 `json:"lat" binding:"required"`
	Lng float64 `json:"lng" binding:"required"`
}
