package model

type CourseStatus string

const (
	CourseDraft     CourseStatus = "draft"
	CoursePublished CourseStatus = "published"
	CourseArchived  CourseStatus = "archived"
)

type LessonType string

const (
	LessonVideo LessonType = "video"
	LessonText  LessonType = "text"
	LessonQuiz  LessonType = "quiz"
	LessonScorm LessonType = "scorm"
)

// swagger:model
type Course struct {
	BaseModel
	Title        string       `gorm:"size:255;not null" json:"title"`
	Description  string       `gorm:"type:text" json:"description"`
	Category     string       `gorm:"size:100" json:"category"`
	Price        float64      `gorm:"default:0" json:"price"`
	ThumbnailURL *string      `gorm:"size:512" json:"thumbnailUrl,omitempty"`
	Status       CourseStatus `gorm:"type:enum('draft','published','archived');default:'draft'" json:"status"`
	InstructorID uint         `gorm:"index;type:bigint unsigned" json:"instructorId"`

	Sections []CourseSection `gorm:"foreignKey:CourseID" json:"sections,omitempty"`
	Lessons  []CourseLesson  `gorm:"foreignKey:CourseID" json:"lessons,omitempty"`
}

func (Course) TableName() string {
	return "courses"
}

// swagger:model
type CourseSection struct {
	BaseModel
	CourseID uint   `gorm:"index;type:bigint unsigned;not null" json:"courseId"`
	Title    string `gorm:"size:255;not null" json:"title"`
	Position int    `gorm:"default:0" json:"position"`
}

func (CourseSection) TableName() string {
	return "course_sections"
}

// swagger:model
type CourseLesson struct {
	BaseModel
	CourseID  uint       `gorm:"index;type:bigint unsigned;not null" json:"courseId"`
	SectionID uint       `gorm:"index;type:bigint unsigned;not null" json:"sectionId"`
	Title     string     `gorm:"size:255;not null" json:"title"`
	Type      LessonType `gorm:"column:lesson_type;type:enum('video','text','quiz','scorm');not null" json:"lessonType"`
	Position  int        `gorm:"default:0" json:"position"`
	VideoURL  *string    `gorm:"size:512" json:"videoUrl,omitempty"`
	// scorm类型课时的content是一个小JSON描述符 {scorm_package_id, launch_path, version}
	Content         *string `gorm:"type:text" json:"content,omitempty"`
	DurationSeconds *int    `json:"durationSeconds,omitempty"`
	IsPreview       bool    `gorm:"default:false" json:"isPreview"`
}

func (CourseLesson) TableName() string {
	return "course_lessons"
}
