package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"exam-service/internal/apperror"
	"exam-service/internal/assets"
	"exam-service/internal/middleware"
	"exam-service/internal/models"
	"exam-service/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ExamHandler struct {
	Service *service.ExamService
}

func NewExamHandler(s *service.ExamService) *ExamHandler {
	return &ExamHandler{Service: s}
}

// questionPayload is the wire form of one entry in the questionsData field.
// A null image signals that the image is cleared and a questionImage<index>
// file part, when present, is the replacement.
type questionPayload struct {
	ID             string   `json:"id,omitempty"`
	Answers        []string `json:"answers"`
	CorrectAnswers []int    `json:"correctAnswers"`
	Points         float64  `json:"points"`
	Explanation    string   `json:"explanation"`
	Image          *string  `json:"image"`
}

func (h *ExamHandler) ListExams(c *gin.Context) {
	principal := middleware.PrincipalFrom(c)
	exams, err := h.Service.ListExams(c.Request.Context(), principal)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, exams)
}

func (h *ExamHandler) GetExam(c *gin.Context) {
	exam, err := h.Service.GetExam(c.Request.Context(), c.Param("slug"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, exam)
}

func (h *ExamHandler) ListExamsByCategory(c *gin.Context) {
	exams, err := h.Service.ListExamsByCategory(c.Request.Context(), c.Param("title"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, exams)
}

func (h *ExamHandler) CreateExam(c *gin.Context) {
	principal := middleware.PrincipalFrom(c)

	title := c.PostForm("title")
	categoryID, err := primitive.ObjectIDFromHex(c.PostForm("category"))
	if err != nil {
		writeError(c, apperror.Validationf("invalid category id"))
		return
	}
	duration, err := strconv.Atoi(c.PostForm("duration"))
	if err != nil {
		writeError(c, apperror.Validationf("duration must be a number"))
		return
	}
	var tier models.Tier
	if raw := c.PostForm("tier"); raw != "" {
		tier, err = models.ParseTier(raw)
		if err != nil {
			writeError(c, apperror.Validationf("%v", err))
			return
		}
	}

	payloads, err := parseQuestionsData(c.PostForm("questionsData"))
	if err != nil {
		writeError(c, err)
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		writeError(c, apperror.Validationf("invalid multipart form"))
		return
	}

	specs := make([]service.QuestionSpec, len(payloads))
	for i, p := range payloads {
		upload, err := readUpload(form, questionImageField(i))
		if err != nil {
			writeError(c, err)
			return
		}
		specs[i] = service.QuestionSpec{
			Answers:        p.Answers,
			CorrectAnswers: p.CorrectAnswers,
			Points:         p.Points,
			Explanation:    p.Explanation,
			Image:          upload,
		}
	}

	exam, err := h.Service.CreateExam(c.Request.Context(), service.CreateExamInput{
		Title:      title,
		CategoryID: categoryID,
		UserID:     principal.ID,
		Duration:   duration,
		Tier:       tier,
		Questions:  specs,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"exam": exam, "message": "Exam will be available in exams tab!"})
}

func (h *ExamHandler) UpdateExam(c *gin.Context) {
	var in service.UpdateExamInput

	if title, ok := c.GetPostForm("title"); ok {
		in.Title = &title
	}
	if raw, ok := c.GetPostForm("category"); ok {
		oid, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			writeError(c, apperror.Validationf("invalid category id"))
			return
		}
		in.CategoryID = &oid
	}
	if raw, ok := c.GetPostForm("duration"); ok {
		duration, err := strconv.Atoi(raw)
		if err != nil {
			writeError(c, apperror.Validationf("duration must be a number"))
			return
		}
		in.Duration = &duration
	}
	if raw, ok := c.GetPostForm("tier"); ok {
		tier, err := models.ParseTier(raw)
		if err != nil {
			writeError(c, apperror.Validationf("%v", err))
			return
		}
		in.Tier = &tier
	}
	if raw, ok := c.GetPostForm("isVisible"); ok {
		visible, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(c, apperror.Validationf("isVisible must be a boolean"))
			return
		}
		in.IsVisible = &visible
	}

	if raw, ok := c.GetPostForm("questionsData"); ok {
		payloads, err := parseQuestionsData(raw)
		if err != nil {
			writeError(c, err)
			return
		}
		form, err := c.MultipartForm()
		if err != nil {
			writeError(c, apperror.Validationf("invalid multipart form"))
			return
		}
		in.Upserts = make([]service.QuestionUpsert, len(payloads))
		for i, p := range payloads {
			up := service.QuestionUpsert{
				Answers:        p.Answers,
				CorrectAnswers: p.CorrectAnswers,
				Points:         p.Points,
				Explanation:    p.Explanation,
				Image:          p.Image,
			}
			if p.ID != "" {
				oid, err := primitive.ObjectIDFromHex(p.ID)
				if err != nil {
					writeError(c, apperror.Validationf("question at index %d has an invalid id", i))
					return
				}
				up.ID = &oid
			}
			if p.Image == nil {
				upload, err := readUpload(form, questionImageField(i))
				if err != nil {
					writeError(c, err)
					return
				}
				up.NewImage = upload
			}
			in.Upserts[i] = up
		}
	}

	if raw, ok := c.GetPostForm("deletedQuestionIds"); ok {
		var hexIDs []string
		if err := json.Unmarshal([]byte(raw), &hexIDs); err != nil {
			writeError(c, apperror.Validationf("invalid deletedQuestionIds format"))
			return
		}
		for _, hex := range hexIDs {
			oid, err := primitive.ObjectIDFromHex(hex)
			if err != nil {
				writeError(c, apperror.Validationf("invalid question id %q", hex))
				return
			}
			in.DeleteIDs = append(in.DeleteIDs, oid)
		}
	}

	exam, err := h.Service.UpdateExam(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"exam": exam, "message": "Exam updated successfully"})
}

func (h *ExamHandler) DeleteExam(c *gin.Context) {
	if err := h.Service.DeleteExam(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Exam deleted successfully"})
}

func parseQuestionsData(raw string) ([]questionPayload, error) {
	if raw == "" {
		return nil, apperror.Validationf("questionsData is required")
	}
	var payloads []questionPayload
	if err := json.Unmarshal([]byte(raw), &payloads); err != nil {
		return nil, apperror.Validationf("invalid questionsData format")
	}
	if len(payloads) == 0 {
		return nil, apperror.Validationf("questionsData must be a non-empty array")
	}
	return payloads, nil
}

func questionImageField(index int) string {
	return fmt.Sprintf("questionImage%d", index)
}

// readUpload pulls the named file part out of the form, when present.
func readUpload(form *multipart.Form, field string) (*assets.Upload, error) {
	headers := form.File[field]
	if len(headers) == 0 {
		return nil, nil
	}
	fh := headers[0]
	f, err := fh.Open()
	if err != nil {
		return nil, apperror.Validationf("could not read file %s", field)
	}
	defer f.Close()
	content, err := io.ReadAll(f)
	if err != nil {
		return nil, apperror.Validationf("could not read file %s", field)
	}
	return &assets.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Content:     content,
	}, nil
}
