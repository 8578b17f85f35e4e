package model

type Doctor struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	Bio            string `json:"bio"`
	Specialization string `json:"specialization"`
	Experience     int    `json:"experience"`
	Status         string `json:"status"`
	Avatar         string `json:"avatar,omitempty"`
}

type DoctorPage struct {
	Items      []Doctor `json:"items"`
	TotalPages int      `json:"totalPages"`
	PageIndex  int      `json:"pageIndex,omitempty"`
	PageSize   int      `json:"pageSize,omitempty"`
}

// Avatar is an uploaded image forwarded to the directory as a multipart file.
type Avatar struct {
	FileName    string
	ContentType string
	Data        []byte
}

type DoctorCreateRequest struct {
	Name           string  `json:"name" validate:"required,min=2,max=100"`
	Email          string  `json:"email" validate:"required,email,max=254"`
	Bio            string  `json:"bio" validate:"omitempty,max=2000"`
	Specialization string  `json:"specialization" validate:"required,min=2,max=100"`
	Experience     int     `json:"experience" validate:"min=0,max=80"`
	Avatar         *Avatar `json:"-"`
}

type DoctorUpdateRequest struct {
	Name           string  `json:"name" validate:"required,min=2,max=100"`
	Email          string  `json:"email" validate:"required,email,max=254"`
	Bio            string  `json:"bio" validate:"omitempty,max=2000"`
	Specialization string  `json:"specialization" validate:"required,min=2,max=100"`
	Experience     int     `json:"experience" validate:"min=0,max=80"`
	AvatarURL      string  `json:"avatar,omitempty" validate:"omitempty,url"`
	Avatar         *Avatar `json:"-"`
}

type DoctorSearch struct {
	Name      string `validate:"omitempty,max=100"`
	Specialty string `validate:"omitempty,max=100"`
}

func (s DoctorSearch) Empty() bool {
	return s.Name == "" && s.Specialty == ""
}
