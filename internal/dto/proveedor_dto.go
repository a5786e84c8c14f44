package dto

type CrearProveedorRequest struct {
	RazonSocial   string  `json:"razon_social"   validate:"required,min=2,max=120"`
	CUIT          string  `json:"cuit"           validate:"required,min=11,max=13"`
	Telefono      *string `json:"telefono"`
	Email         *string `json:"email"          validate:"omitempty,email"`
	Direccion     *string `json:"direccion"`
	CondicionPago *string `json:"condicion_pago"`
}

type ActualizarProveedorRequest struct {
	RazonSocial   *string `json:"razon_social"   validate:"omitempty,min=2,max=120"`
	Telefono      *string `json:"telefono"`
	Email         *string `json:"email"          validate:"omitempty,email"`
	Direccion     *string `json:"direccion"`
	CondicionPago *string `json:"condicion_pago"`
}

type CrearContactoRequest struct {
	Nombre   string  `json:"nombre"   validate:"required,min=2,max=120"`
	Cargo    *string `json:"cargo"`
	Telefono *string `json:"telefono"`
	Email    *string `json:"email"    validate:"omitempty,email"`
}

type ContactoResponse struct {
	ID       string  `json:"id"`
	Nombre   string  `json:"nombre"`
	Cargo    *string `json:"cargo"`
	Telefono *string `json:"telefono"`
	Email    *string `json:"email"`
}

type ProveedorResponse struct {
	ID            string             `json:"id"`
	RazonSocial   string             `json:"razon_social"`
	CUIT          string             `json:"cuit"`
	Telefono      *string            `json:"telefono"`
	Email         *string            `json:"email"`
	Direccion     *string            `json:"direccion"`
	CondicionPago *string            `json:"condicion_pago"`
	Activo        bool               `json:"activo"`
	Contactos     []ContactoResponse `json:"contactos,omitempty"`
}
