package portal

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/julienschmidt/httprouter"

	"clinicportal/internal/guard"
	apperrors "clinicportal/pkg/errors"
	httputil "clinicportal/pkg/http"
	"clinicportal/pkg/model"
)

const multipartMemory = 8 << 20

func (h *Handler) AdminDoctorsView(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	h.writeDoctorPage(w, r, "admin-doctors")
}

func (h *Handler) ListDoctors(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	h.writeDoctorPage(w, r, "")
}

func (h *Handler) writeDoctorPage(w http.ResponseWriter, r *http.Request, view string) {
	ctx, sess := upstream(r)

	pageIndex, pageSize, err := httputil.ExtractPage(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	page, err := h.directory.Page(ctx, pageIndex, pageSize)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if view != "" {
		httputil.WriteSuccess(w, ViewResponse{View: view, Session: sess, Data: page})
		return
	}
	httputil.WritePaged(w, page.Items, page.PageIndex, page.PageSize, page.TotalPages)
}

func (h *Handler) GetDoctor(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, _ := upstream(r)

	doctor, err := h.directory.Get(ctx, ps.ByName("id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteSuccess(w, doctor)
}

func (h *Handler) CreateDoctor(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, _ := upstream(r)

	form, err := readDoctorForm(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	result, err := h.directory.Create(ctx, model.DoctorCreateRequest{
		Name:           form.name,
		Email:          form.email,
		Bio:            form.bio,
		Specialization: form.specialization,
		Experience:     form.experience,
		Avatar:         form.avatar,
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteCreated(w, ActionResponse{
		Notice:   Notice{Title: result.Title, Description: result.Message},
		Redirect: guard.AdminPath + "/doctors",
		Data:     result.Doctor,
	})
}

func (h *Handler) UpdateDoctor(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, _ := upstream(r)

	form, err := readDoctorForm(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	result, err := h.directory.Update(ctx, ps.ByName("id"), model.DoctorUpdateRequest{
		Name:           form.name,
		Email:          form.email,
		Bio:            form.bio,
		Specialization: form.specialization,
		Experience:     form.experience,
		AvatarURL:      form.avatarURL,
		Avatar:         form.avatar,
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteSuccess(w, ActionResponse{Notice: Notice{Title: result.Title, Description: result.Message}})
}

func (h *Handler) DeleteDoctor(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, _ := upstream(r)

	result, err := h.directory.Delete(ctx, ps.ByName("id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteSuccess(w, ActionResponse{Notice: Notice{Title: result.Title, Description: result.Message}})
}

type doctorForm struct {
	name           string
	email          string
	bio            string
	specialization string
	experience     int
	avatarURL      string
	avatar         *model.Avatar
}

// readDoctorForm parses the multipart admin form. The avatar part is
// optional; on update a plain "avatar" field keeps the current image URL.
func readDoctorForm(r *http.Request) (*doctorForm, error) {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		return nil, apperrors.InvalidInput("Invalid multipart form")
	}

	form := &doctorForm{
		name:           r.FormValue("name"),
		email:          r.FormValue("email"),
		bio:            r.FormValue("bio"),
		specialization: r.FormValue("specialization"),
		avatarURL:      r.FormValue("avatar"),
	}

	if raw := strings.TrimSpace(r.FormValue("experience")); raw != "" {
		experience, err := strconv.Atoi(raw)
		if err != nil {
			return nil, apperrors.Validation("Số năm kinh nghiệm không hợp lệ", map[string]any{"experience": "experience must be a number"})
		}
		form.experience = experience
	}

	file, header, err := r.FormFile("avatar")
	if err == http.ErrMissingFile {
		return form, nil
	}
	if err != nil {
		return nil, apperrors.InvalidInput("Invalid avatar upload")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, apperrors.InvalidInput("Invalid avatar upload")
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}
	form.avatar = &model.Avatar{
		FileName:    header.Filename,
		ContentType: contentType,
		Data:        data,
	}
	form.avatarURL = ""
	return form, nil
}
