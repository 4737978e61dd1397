package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"strings"

	"arnhub/backend/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type CatalogService struct {
	db     *gorm.DB
	videos VideoStore
	logger *log.Logger
}

func NewCatalogService(db *gorm.DB, videos VideoStore, logger *log.Logger) *CatalogService {
	return &CatalogService{db: db, videos: videos, logger: logger}
}

type CourseInput struct {
	Title       string
	Description string
	Category    string
	Difficulty  string
	Duration    string
	IsPublished bool
}

// LessonInput describes a lesson write. Sections is the raw JSON document;
// empty means an empty list. Video is optional.
type LessonInput struct {
	Title       string
	Sections    string
	IsPublished bool
	Video       *VideoUpload
}

type VideoUpload struct {
	Filename string
	Size     int64
	Reader   io.Reader
}

// Browse splits the visible courses by ownership.
type Browse struct {
	YourCourses []models.Course `json:"your_courses"`
	TeamCourses []models.Course `json:"team_courses"`
}

type Dashboard struct {
	Courses         int64 `json:"courses"`
	Lessons         int64 `json:"lessons"`
	PendingRequests int64 `json:"pending_requests"`
}

func (in CourseInput) validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return newError(ErrValidation, "Course title is required.")
	}
	return nil
}

func (in CourseInput) apply(course *models.Course) {
	course.Title = strings.TrimSpace(in.Title)
	course.Description = in.Description
	course.Category = in.Category
	course.Difficulty = in.Difficulty
	course.Duration = in.Duration
	course.IsPublished = in.IsPublished
}

// parseSections checks that raw is well-formed JSON. The structure of the
// blocks is not checked.
func parseSections(raw string) (datatypes.JSON, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return datatypes.JSON("[]"), nil
	}
	if !json.Valid([]byte(raw)) {
		return nil, newError(ErrValidation, "Invalid lesson content structure.")
	}
	return datatypes.JSON(raw), nil
}

func (s *CatalogService) CreateCourse(ctx context.Context, in CourseInput, actor *models.User) (*models.Course, error) {
	if err := RequireAdmin(actor); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	course := models.Course{CreatorID: actor.ID}
	in.apply(&course)

	if err := s.db.WithContext(ctx).Create(&course).Error; err != nil {
		return nil, err
	}
	return &course, nil
}

// managedCourse loads a course the actor is allowed to manage.
func (s *CatalogService) managedCourse(tx *gorm.DB, courseID uint, actor *models.User, denied string) (*models.Course, error) {
	if err := RequireAdmin(actor); err != nil {
		return nil, err
	}

	var course models.Course
	if err := tx.First(&course, courseID).Error; err != nil {
		return nil, notFound(err, "Course not found.")
	}
	if !canManageCourse(actor, &course) {
		return nil, newError(ErrForbidden, denied)
	}
	return &course, nil
}

func (s *CatalogService) UpdateCourse(ctx context.Context, courseID uint, in CourseInput, actor *models.User) (*models.Course, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var course *models.Course
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		course, err = s.managedCourse(tx, courseID, actor, "You are not allowed to edit this course.")
		if err != nil {
			return err
		}
		in.apply(course)
		return tx.Model(course).
			Select("title", "description", "category", "difficulty", "duration", "is_published").
			Updates(course).Error
	})
	if err != nil {
		return nil, err
	}
	return course, nil
}

func (s *CatalogService) SetCoursePublished(ctx context.Context, courseID uint, published bool, actor *models.User) (*models.Course, error) {
	var course *models.Course
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		course, err = s.managedCourse(tx, courseID, actor, "You are not allowed to edit this course.")
		if err != nil {
			return err
		}
		course.IsPublished = published
		return tx.Model(course).Update("is_published", published).Error
	})
	if err != nil {
		return nil, err
	}
	return course, nil
}

// DeleteCourse removes the course and all of its lessons.
func (s *CatalogService) DeleteCourse(ctx context.Context, courseID uint, actor *models.User) error {
	var videos []string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		course, err := s.managedCourse(tx, courseID, actor, "You are not allowed to delete this course.")
		if err != nil {
			return err
		}

		if err := tx.Model(&models.Lesson{}).
			Where("course_id = ? AND video_filename <> ''", course.ID).
			Pluck("video_filename", &videos).Error; err != nil {
			return err
		}
		if err := tx.Where("course_id = ?", course.ID).Delete(&models.Lesson{}).Error; err != nil {
			return err
		}
		return tx.Delete(course).Error
	})
	if err != nil {
		return err
	}

	for _, name := range videos {
		s.removeVideo(ctx, name)
	}
	return nil
}

// ManagedCourses lists every course for a head admin and the actor's own
// courses otherwise.
func (s *CatalogService) ManagedCourses(ctx context.Context, actor *models.User) ([]models.Course, error) {
	if err := RequireAdmin(actor); err != nil {
		return nil, err
	}

	query := s.db.WithContext(ctx).Order("id")
	if !actor.IsHeadAdmin {
		query = query.Where("creator_id = ?", actor.ID)
	}

	var courses []models.Course
	if err := query.Find(&courses).Error; err != nil {
		return nil, err
	}
	return courses, nil
}

func (s *CatalogService) CourseLessons(ctx context.Context, courseID uint, actor *models.User) (*models.Course, error) {
	course, err := s.managedCourse(s.db.WithContext(ctx), courseID, actor, "You are not allowed to view this course's lessons.")
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Where("course_id = ?", course.ID).Order("id").Find(&course.Lessons).Error; err != nil {
		return nil, err
	}
	return course, nil
}

func (s *CatalogService) CreateLesson(ctx context.Context, courseID uint, in LessonInput, actor *models.User) (*models.Lesson, error) {
	if _, err := s.managedCourse(s.db.WithContext(ctx), courseID, actor, "You are not allowed to add lessons to this course."); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Title) == "" {
		return nil, newError(ErrValidation, "Lesson title is required.")
	}
	sections, err := parseSections(in.Sections)
	if err != nil {
		return nil, err
	}

	creatorID := actor.ID
	lesson := models.Lesson{
		CourseID:    courseID,
		CreatorID:   &creatorID,
		Title:       strings.TrimSpace(in.Title),
		Sections:    sections,
		IsPublished: in.IsPublished,
	}

	if in.Video != nil {
		name, err := s.videos.Save(ctx, in.Video.Filename, in.Video.Reader, in.Video.Size)
		if err != nil {
			return nil, err
		}
		lesson.VideoFilename = name
	}

	if err := s.db.WithContext(ctx).Create(&lesson).Error; err != nil {
		s.removeVideo(ctx, lesson.VideoFilename)
		return nil, err
	}
	return &lesson, nil
}

// managedLesson loads a lesson whose course the actor may manage.
func (s *CatalogService) managedLesson(tx *gorm.DB, lessonID uint, actor *models.User, denied string) (*models.Lesson, error) {
	if err := RequireAdmin(actor); err != nil {
		return nil, err
	}

	var lesson models.Lesson
	if err := tx.First(&lesson, lessonID).Error; err != nil {
		return nil, notFound(err, "Lesson not found.")
	}
	if _, err := s.managedCourse(tx, lesson.CourseID, actor, denied); err != nil {
		return nil, err
	}
	return &lesson, nil
}

func (s *CatalogService) UpdateLesson(ctx context.Context, lessonID uint, in LessonInput, actor *models.User) (*models.Lesson, error) {
	lesson, err := s.managedLesson(s.db.WithContext(ctx), lessonID, actor, "You are not allowed to edit this lesson.")
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Title) == "" {
		return nil, newError(ErrValidation, "Lesson title is required.")
	}
	sections, err := parseSections(in.Sections)
	if err != nil {
		return nil, newError(ErrValidation, "Invalid section data.")
	}

	previousVideo := lesson.VideoFilename
	lesson.Title = strings.TrimSpace(in.Title)
	lesson.Sections = sections
	lesson.IsPublished = in.IsPublished

	if in.Video != nil {
		name, err := s.videos.Save(ctx, in.Video.Filename, in.Video.Reader, in.Video.Size)
		if err != nil {
			return nil, err
		}
		lesson.VideoFilename = name
	}

	err = s.db.WithContext(ctx).Model(lesson).
		Select("title", "sections", "is_published", "video_filename").
		Updates(lesson).Error
	if err != nil {
		if lesson.VideoFilename != previousVideo {
			s.removeVideo(ctx, lesson.VideoFilename)
		}
		return nil, err
	}

	if lesson.VideoFilename != previousVideo {
		s.removeVideo(ctx, previousVideo)
	}
	return lesson, nil
}

// DeleteLesson removes the lesson and returns the id of its course.
func (s *CatalogService) DeleteLesson(ctx context.Context, lessonID uint, actor *models.User) (uint, error) {
	lesson, err := s.managedLesson(s.db.WithContext(ctx), lessonID, actor, "You are not allowed to delete this lesson.")
	if err != nil {
		return 0, err
	}

	if err := s.db.WithContext(ctx).Delete(lesson).Error; err != nil {
		return 0, err
	}

	s.removeVideo(ctx, lesson.VideoFilename)
	return lesson.CourseID, nil
}

// BrowseCourses lists published courses, or every course for admins.
func (s *CatalogService) BrowseCourses(ctx context.Context, viewer *models.User) (*Browse, error) {
	query := s.db.WithContext(ctx).Order("created_at DESC, id DESC")
	if !viewer.IsAdmin {
		query = query.Where("is_published = ?", true)
	}

	var courses []models.Course
	if err := query.Find(&courses).Error; err != nil {
		return nil, err
	}

	browse := &Browse{YourCourses: []models.Course{}, TeamCourses: []models.Course{}}
	for _, c := range courses {
		if c.CreatorID == viewer.ID {
			browse.YourCourses = append(browse.YourCourses, c)
		} else {
			browse.TeamCourses = append(browse.TeamCourses, c)
		}
	}
	return browse, nil
}

// CourseDetail returns a course with the lessons the viewer may see.
// Unpublished content is visible to admins only.
func (s *CatalogService) CourseDetail(ctx context.Context, courseID uint, viewer *models.User) (*models.Course, error) {
	var course models.Course
	if err := s.db.WithContext(ctx).First(&course, courseID).Error; err != nil {
		return nil, notFound(err, "Course not found.")
	}
	if !course.IsPublished && !viewer.IsAdmin {
		return nil, newError(ErrNotFound, "Course not found.")
	}

	query := s.db.WithContext(ctx).Where("course_id = ?", course.ID).Order("id")
	if !viewer.IsAdmin {
		query = query.Where("is_published = ?", true)
	}
	if err := query.Find(&course.Lessons).Error; err != nil {
		return nil, err
	}
	return &course, nil
}

func (s *CatalogService) ViewLesson(ctx context.Context, courseID, lessonID uint, viewer *models.User) (*models.Course, *models.Lesson, error) {
	course, err := s.CourseDetail(ctx, courseID, viewer)
	if err != nil {
		return nil, nil, err
	}

	for i := range course.Lessons {
		if course.Lessons[i].ID == lessonID {
			lesson := course.Lessons[i]
			course.Lessons = nil
			return course, &lesson, nil
		}
	}
	return nil, nil, newError(ErrNotFound, "Lesson not found or unpublished.")
}

func (s *CatalogService) Dashboard(ctx context.Context, actor *models.User) (*Dashboard, error) {
	if err := RequireAdmin(actor); err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	var d Dashboard

	courses := db.Model(&models.Course{})
	lessons := db.Model(&models.Lesson{})
	if !actor.IsHeadAdmin {
		courses = courses.Where("creator_id = ?", actor.ID)
		lessons = lessons.Where("course_id IN (?)", db.Model(&models.Course{}).Select("id").Where("creator_id = ?", actor.ID))
	}
	if err := courses.Count(&d.Courses).Error; err != nil {
		return nil, err
	}
	if err := lessons.Count(&d.Lessons).Error; err != nil {
		return nil, err
	}
	if actor.IsHeadAdmin {
		if err := db.Model(&models.AdminRequest{}).
			Where("status = ?", models.AdminRequestPending).
			Count(&d.PendingRequests).Error; err != nil {
			return nil, err
		}
	}
	return &d, nil
}

func (s *CatalogService) removeVideo(ctx context.Context, name string) {
	if name == "" {
		return
	}
	if err := s.videos.Delete(ctx, name); err != nil && !errors.Is(err, context.Canceled) {
		s.logger.Printf("catalog: could not remove video %s: %v", name, err)
	}
}
