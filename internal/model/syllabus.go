package model

import "fmt"

// Lesson 教学大纲中的一课
type Lesson struct {
	Number int    `json:"number"`
	Name   string `json:"name"`
	NameEn string `json:"name_en"`
}

// 课程编号范围
const (
	FirstLesson = 1
	LastLesson  = 10
)

// Syllabus 十课教学大纲
var Syllabus = []Lesson{
	{1, "היכרות עם הסימולטור והטסה בסיסית", "Simulator Introduction & Basic Flight"},
	{2, "מצבי טיסה בסיסיים חלק א'", "Basic Flight Conditions Part A"},
	{3, "מצבי טיסה בסיסיים חלק ב'", "Basic Flight Conditions Part B"},
	{4, "המראה ונחיתה חלק א'", "Takeoff & Landing Part A"},
	{5, "המראה ונחיתה חלק ב'", "Takeoff & Landing Part B"},
	{6, "המראה ונחיתה על המים", "Water Landing"},
	{7, "בד\"ח, Glass Cockpit, והפעלה עצמית (סולו)", "Pre-Flight Check, Glass Cockpit & Solo Operation"},
	{8, "EFB וניווט בסיסי", "EFB & Basic Navigation"},
	{9, "ניווטים מתקדמים", "Advanced Navigation"},
	{10, "גלגל זנב, טיסת לילה והשלמות", "Taildragger, Night Flight & Completion"},
}

// ValidLesson 课程编号是否在 1-10 之间
func ValidLesson(n int) bool {
	return n >= FirstLesson && n <= LastLesson
}

// LessonByNumber 按编号查找课程
func LessonByNumber(n int) (Lesson, bool) {
	if !ValidLesson(n) {
		return Lesson{}, false
	}
	return Syllabus[n-1], true
}

// LessonName 希伯来语展示名
func LessonName(n int) string {
	if l, ok := LessonByNumber(n); ok {
		return fmt.Sprintf("שיעור %d: %s", n, l.Name)
	}
	return fmt.Sprintf("שיעור %d", n)
}

// LessonNameEn 英语展示名
func LessonNameEn(n int) string {
	if l, ok := LessonByNumber(n); ok {
		return fmt.Sprintf("Lesson %d: %s", n, l.NameEn)
	}
	return fmt.Sprintf("Lesson %d", n)
}

// NextLesson 下一课；已是最后一课时返回 false
func NextLesson(current int) (Lesson, bool) {
	return LessonByNumber(current + 1)
}
