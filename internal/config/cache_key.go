package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// TeacherAssignmentsKey returns the cache key for the assignments owned by a teacher
func (r *CacheKeyStruct) TeacherAssignmentsKey(teacherID string) string {
	return fmt.Sprintf("assignments:teacher:%s", teacherID)
}

// AllAssignmentsKey returns the cache key for the unscoped assignment list students see
func (r *CacheKeyStruct) AllAssignmentsKey() string {
	return "assignments:all"
}

// ListGenerationKey returns the counter bumped every time the list cached under listKey is invalidated
func (r *CacheKeyStruct) ListGenerationKey(listKey string) string {
	return listKey + ":gen"
}

// AssignmentsPattern matches every assignment list and generation key
func (r *CacheKeyStruct) AssignmentsPattern() string {
	return "assignments:*"
}

// RevokedTokenKey returns the cache key marking a token ID as logged out
func (r *CacheKeyStruct) RevokedTokenKey(jti string) string {
	return fmt.Sprintf("token:%s:revoked", jti)
}

var CacheKey = NewCacheKeyStruct()
