package ingest_test

import (
	"testing"

	"github.com/austinw/envelope/internal/ingest"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMatcher(t *testing.T) {
	Convey("Given the default alias table", t, func() {
		m := ingest.NewMatcher(ingest.DefaultAliases())

		Convey("When a question contains a known title", func() {
			id, alias, ok := m.Match("Will 'Sinners' win Best Picture at the 2026 Oscars?")

			Convey("Then the nominee resolves", func() {
				So(ok, ShouldBeTrue)
				So(id, ShouldEqual, 3)
				So(alias, ShouldEqual, "sinners")
			})
		})

		Convey("When matching is case-insensitive", func() {
			id, _, ok := m.Match("WILL 'HAMNET' WIN BEST PICTURE?")
			So(ok, ShouldBeTrue)
			So(id, ShouldEqual, 2)
		})

		Convey("When two aliases point at the same nominee", func() {
			Convey("Then the longer alias wins the priority order", func() {
				id, alias, ok := m.Match("Will 'F1: The Movie' win Best Picture?")
				So(ok, ShouldBeTrue)
				So(id, ShouldEqual, 9)
				So(alias, ShouldEqual, "f1: the movie")
			})

			Convey("And the short alias still matches on its own", func() {
				id, alias, ok := m.Match("Will 'F1' win Best Picture?")
				So(ok, ShouldBeTrue)
				So(id, ShouldEqual, 9)
				So(alias, ShouldEqual, "f1")
			})
		})

		Convey("When no alias is contained in the question", func() {
			_, _, ok := m.Match("Will 'Wicked: For Good' win Best Picture?")
			So(ok, ShouldBeFalse)
		})
	})

	Convey("Given an alias table with accented titles", t, func() {
		m := ingest.NewMatcher(ingest.AliasTable{"mendonça filho": 6})

		Convey("Then accent folding matches both spellings", func() {
			id, _, ok := m.Match("A film by Kleber Mendonca Filho")
			So(ok, ShouldBeTrue)
			So(id, ShouldEqual, 6)

			id, _, ok = m.Match("A film by Kleber Mendonça Filho")
			So(ok, ShouldBeTrue)
			So(id, ShouldEqual, 6)
		})
	})
}
