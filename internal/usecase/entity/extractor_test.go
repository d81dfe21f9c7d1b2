package entity

import (
	"testing"
	"time"

	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
)

var ref = time.Date(2026, time.March, 2, 10, 0, 0, 0, time.UTC) // a Monday

func findKind(es []entities.Entity, kind entities.EntityKind) []entities.Entity {
	var out []entities.Entity
	for _, e := range es {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

func TestExtract_People(t *testing.T) {
	e := New(nil)
	got := e.Extract("The report goes to Alice Johnson and then David reviews it.", "en", ref)

	people := findKind(got, entities.EntityKindPerson)
	if len(people) != 2 {
		t.Fatalf("expected 2 people, got %+v", people)
	}
	if people[0].Text != "Alice Johnson" {
		t.Fatalf("unexpected person %q", people[0].Text)
	}
	if people[1].Text != "David" {
		t.Fatalf("unexpected person %q", people[1].Text)
	}
}

func TestExtract_SentenceStartNotAPerson(t *testing.T) {
	e := New(nil)
	got := e.Extract("Budget review happens quarterly. Nothing changed this time.", "en", ref)

	if people := findKind(got, entities.EntityKindPerson); len(people) != 0 {
		t.Fatalf("sentence-start capitalization misread as names: %+v", people)
	}
}

func TestExtract_Organizations(t *testing.T) {
	e := New(nil)
	got := e.Extract("Acme Corp signed the contract and the Platform Team owns delivery.", "en", ref)

	orgs := findKind(got, entities.EntityKindOrganization)
	if len(orgs) != 2 {
		t.Fatalf("expected 2 organizations, got %+v", orgs)
	}
	if orgs[0].Text != "Acme Corp" || orgs[1].Text != "Platform Team" {
		t.Fatalf("unexpected organizations: %+v", orgs)
	}
}

func TestExtract_ResolvableDates(t *testing.T) {
	e := New(nil)
	got := e.Extract("The draft is due tomorrow and the final version in two weeks.", "en", ref)

	dates := findKind(got, entities.EntityKindDate)
	if len(dates) != 2 {
		t.Fatalf("expected 2 dates, got %+v", got)
	}
	if dates[0].Text != "tomorrow" {
		t.Fatalf("unexpected date text %q", dates[0].Text)
	}
	if dates[1].Text != "in two weeks" {
		t.Fatalf("unexpected date text %q", dates[1].Text)
	}
}

func TestExtract_UnresolvableDateKeptAsOther(t *testing.T) {
	e := New(nil)
	got := e.Extract("We revisit pricing in Q3.", "en", ref)

	others := findKind(got, entities.EntityKindOther)
	if len(others) != 1 || others[0].Text != "Q3" {
		t.Fatalf("expected Q3 retained as other, got %+v", got)
	}
}

func TestExtract_SpansMatchText(t *testing.T) {
	e := New(nil)
	text := "Maria Chen presents on Friday."
	got := e.Extract(text, "en", ref)

	for _, ent := range got {
		if text[ent.Start:ent.End] != ent.Text {
			t.Fatalf("span mismatch for %+v: text slice %q", ent, text[ent.Start:ent.End])
		}
	}
}

func TestExtract_DateBeatsPersonOnOverlap(t *testing.T) {
	e := New(nil)
	got := e.Extract("Everything ships next Friday.", "en", ref)

	dates := findKind(got, entities.EntityKindDate)
	if len(dates) != 1 || dates[0].Text != "next Friday" {
		t.Fatalf("expected next Friday as a date, got %+v", got)
	}
	if people := findKind(got, entities.EntityKindPerson); len(people) != 0 {
		t.Fatalf("weekday misread as a name: %+v", people)
	}
}

func TestExtract_ChinesePatterns(t *testing.T) {
	e := New(nil)
	got := e.Extract("市场团队下周五交付方案。", "zh", ref)

	if orgs := findKind(got, entities.EntityKindOrganization); len(orgs) != 1 || orgs[0].Text != "市场团队" {
		t.Fatalf("expected 市场团队, got %+v", got)
	}
	var foundDate bool
	for _, ent := range got {
		if ent.Text == "下周五" {
			foundDate = true
			if ent.Kind != entities.EntityKindDate {
				t.Fatalf("下周五 should resolve as a date, got kind %q", ent.Kind)
			}
		}
	}
	if !foundDate {
		t.Fatalf("expected 下周五 mention, got %+v", got)
	}
}

func TestExtract_Empty(t *testing.T) {
	e := New(nil)
	if got := e.Extract("   ", "en", ref); len(got) != 0 {
		t.Fatalf("expected nothing for blank text, got %+v", got)
	}
}
