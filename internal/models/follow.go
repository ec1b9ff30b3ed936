package models

// Follow is a directed edge follower -> followed. The composite primary key
// keeps one edge per ordered pair.
type Follow struct {
	FollowerID int64 `gorm:"primaryKey;autoIncrement:false"`
	FollowedID int64 `gorm:"primaryKey;autoIncrement:false;index"`
	Follower   *User `gorm:"foreignKey:FollowerID;constraint:OnDelete:CASCADE"`
	Followed   *User `gorm:"foreignKey:FollowedID;constraint:OnDelete:CASCADE"`
}

// TableName returns the database table name for the Follow model.
func (Follow) TableName() string {
	return "followers"
}

// All returns every model managed by the schema, in dependency order.
func All() []any {
	return []any{&User{}, &Post{}, &Follow{}}
}
