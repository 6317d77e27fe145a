package model

import (
	"testing"
	"time"
)

func TestRecurrenceOccurrences(t *testing.T) {
	cases := []struct {
		r        Recurrence
		extra    int
		interval int
	}{
		{RecurrenceNone, 0, 0},
		{"", 0, 0},
		{RecurrenceWeekly, 4, 7},
		{RecurrenceBiweekly, 2, 14},
	}
	for _, c := range cases {
		extra, interval := c.r.Occurrences()
		if extra != c.extra || interval != c.interval {
			t.Errorf("%q: 期望 (%d,%d)，实际 (%d,%d)", c.r, c.extra, c.interval, extra, interval)
		}
	}
}

func TestSlotState(t *testing.T) {
	lead := "u1"
	trainee := "u2"

	if s := (&Slot{DayType: DayIndependent, LeadInstructorID: &lead}); s.State() != SlotIndependent {
		t.Errorf("独立时段应为 independent，实际 %s", s.State())
	}
	if s := (&Slot{DayType: DayNormal}); s.State() != SlotEmpty {
		t.Errorf("无主教练应为 empty，实际 %s", s.State())
	}
	if s := (&Slot{DayType: DayNormal, LeadInstructorID: &lead}); s.State() != SlotPartial {
		t.Errorf("无学员应为 partial，实际 %s", s.State())
	}
	if s := (&Slot{DayType: DayNormal, LeadInstructorID: &lead, TraineeID: &trainee}); s.State() != SlotFull {
		t.Errorf("满员应为 full，实际 %s", s.State())
	}
}

func TestSlotStartEnd(t *testing.T) {
	s := &Slot{Date: "2024-01-08", TimeStart: "09:30", TimeEnd: "11:00"}
	start, err := s.StartAt(time.UTC)
	if err != nil {
		t.Fatalf("StartAt 失败: %v", err)
	}
	end, _ := s.EndAt(time.UTC)
	if end.Sub(start) != 90*time.Minute {
		t.Errorf("期望 90 分钟，实际 %v", end.Sub(start))
	}

	bad := &Slot{Date: "2024-01-08", TimeStart: "9h"}
	if _, err := bad.StartAt(time.UTC); err == nil {
		t.Error("非法时间应返回错误")
	}
}

func TestSyllabus(t *testing.T) {
	if len(Syllabus) != LastLesson {
		t.Fatalf("大纲应有 %d 课，实际 %d", LastLesson, len(Syllabus))
	}
	for i, l := range Syllabus {
		if l.Number != i+1 {
			t.Errorf("第 %d 项编号错误: %d", i, l.Number)
		}
	}
	if LessonNameEn(4) != "Lesson 4: Takeoff & Landing Part A" {
		t.Errorf("LessonNameEn(4) 不符: %s", LessonNameEn(4))
	}
	if LessonName(11) != "שיעור 11" {
		t.Errorf("超出范围的课程名不符: %s", LessonName(11))
	}
	if _, ok := NextLesson(LastLesson); ok {
		t.Error("最后一课不应有下一课")
	}
}
