package model

// Student 学生表，对应 students
// 由学生管理模块维护；本服务只读，并以该行作为按学生串行化写操作的锁
type Student struct {
	StudentID  uint   `gorm:"primaryKey;autoIncrement"           json:"student_id"`
	FullName   string `gorm:"type:varchar(100);not null"         json:"full_name"`
	GradeLevel string `gorm:"type:varchar(20);not null;default:''" json:"grade_level"`
	SoftDeleteModel
}

// TableName 指定表名
func (Student) TableName() string { return "students" }
