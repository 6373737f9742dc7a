package model

// ScormVersion 取值 "1.2" 或 "2004"
type ScormVersion string

const (
	Scorm12   ScormVersion = "1.2"
	Scorm2004 ScormVersion = "2004"
)

// ScormPackage 一次导入对应一行，导入后不可变；重新导入总是生成新的课程+课时+包
//
// StoragePath 是解压根目录的绝对路径；ManifestPath/LaunchPath 始终是
// 相对该根目录的POSIX路径，不含 ".."，不以 "/" 开头。
// swagger:model
type ScormPackage struct {
	BaseModel
	CourseID  uint `gorm:"index;type:bigint unsigned;not null" json:"courseId"`
	SectionID uint `gorm:"type:bigint unsigned;not null" json:"sectionId"`
	LessonID  uint `gorm:"uniqueIndex;type:bigint unsigned;not null" json:"lessonId"`

	Title              string       `gorm:"size:255;not null" json:"title"`
	PackageURL         string       `gorm:"size:1024;not null" json:"packageUrl"`
	StoragePath        string       `gorm:"size:1024;not null" json:"-"`
	ManifestPath       string       `gorm:"size:1024;not null" json:"manifestPath"`
	LaunchPath         string       `gorm:"size:1024;not null" json:"launchPath"`
	ScormVersion       ScormVersion `gorm:"size:10;not null" json:"scormVersion"`
	ManifestIdentifier *string      `gorm:"size:255" json:"manifestIdentifier,omitempty"`
	CreatedBy          *uint        `gorm:"type:bigint unsigned" json:"createdBy,omitempty"`
}

func (ScormPackage) TableName() string {
	return "scorm_packages"
}
