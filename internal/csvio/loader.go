package csvio

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/limaJavier/timetabling-ga/pkg/model"
	"github.com/samber/lo"
)

const (
	GroupsFile    = "groups.csv"
	LecturersFile = "lecturers.csv"
	RoomsFile     = "rooms.csv"
	SubjectsFile  = "subjects.csv"
)

type groupRow struct {
	Name      string `csv:"name"`
	Students  uint64 `csv:"num_students"`
	Subjects  string `csv:"subjects"`  // Separated by ';'
	Subgroups string `csv:"subgroups"` // Separated by ';'
}

type lecturerRow struct {
	Name string `csv:"name"`
	// Semicolon separated "subject:type,type" entries, e.g. "Algorithms:lecture,practical;Physics:lecture"
	SubjectsCanTeach string `csv:"subjects_can_teach"`
}

type roomRow struct {
	Name     string `csv:"name"`
	Capacity uint64 `csv:"capacity"`
}

type subjectRow struct {
	Name           string  `csv:"name"`
	TotalHours     float64 `csv:"total_hours"`
	LectureHours   float64 `csv:"lecture_hours"`
	PracticalHours float64 `csv:"practical_hours"`
	NeedsSubgroup  string  `csv:"needs_subgroup"` // "True" or "False"
}

// LoadCatalog reads groups.csv, lecturers.csv, rooms.csv and subjects.csv from directory and returns
// the validated catalog
func LoadCatalog(directory string) (model.Catalog, error) {
	var (
		groups    []*groupRow
		lecturers []*lecturerRow
		rooms     []*roomRow
		subjects  []*subjectRow
	)

	if err := unmarshalFile(filepath.Join(directory, GroupsFile), &groups); err != nil {
		return model.Catalog{}, err
	}
	if err := unmarshalFile(filepath.Join(directory, LecturersFile), &lecturers); err != nil {
		return model.Catalog{}, err
	}
	if err := unmarshalFile(filepath.Join(directory, RoomsFile), &rooms); err != nil {
		return model.Catalog{}, err
	}
	if err := unmarshalFile(filepath.Join(directory, SubjectsFile), &subjects); err != nil {
		return model.Catalog{}, err
	}

	rawCatalog := model.RawCatalog{
		Groups: lo.Map(groups, func(row *groupRow, _ int) model.RawGroup {
			return model.RawGroup{
				Name:      strings.TrimSpace(row.Name),
				Students:  row.Students,
				Subjects:  splitList(row.Subjects, ";"),
				Subgroups: splitList(row.Subgroups, ";"),
			}
		}),
		Rooms: lo.Map(rooms, func(row *roomRow, _ int) model.RawRoom {
			return model.RawRoom{Name: strings.TrimSpace(row.Name), Capacity: row.Capacity}
		}),
		Subjects: lo.Map(subjects, func(row *subjectRow, _ int) model.RawSubject {
			return model.RawSubject{
				Name:           strings.TrimSpace(row.Name),
				TotalHours:     row.TotalHours,
				LectureHours:   row.LectureHours,
				PracticalHours: row.PracticalHours,
				NeedsSubgroup:  strings.EqualFold(strings.TrimSpace(row.NeedsSubgroup), "true"),
			}
		}),
	}

	for _, row := range lecturers {
		capabilities, err := parseCapabilities(row.SubjectsCanTeach)
		if err != nil {
			return model.Catalog{}, fmt.Errorf("lecturer %q: %w", row.Name, err)
		}
		rawCatalog.Lecturers = append(rawCatalog.Lecturers, model.RawLecturer{
			Name:         strings.TrimSpace(row.Name),
			Capabilities: capabilities,
		})
	}

	return model.ProcessRawCatalog(rawCatalog)
}

func unmarshalFile(path string, out any) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %v: %w", path, err)
	}
	defer file.Close()

	if err := gocsv.UnmarshalFile(file, out); err != nil {
		return fmt.Errorf("failed to parse %v: %w", path, err)
	}
	return nil
}

func splitList(value, separator string) []string {
	return lo.Compact(lo.Map(strings.Split(value, separator), func(item string, _ int) string {
		return strings.TrimSpace(item)
	}))
}

func parseCapabilities(value string) (map[string][]string, error) {
	capabilities := make(map[string][]string)
	for _, entry := range splitList(value, ";") {
		subject, types, found := strings.Cut(entry, ":")
		if !found {
			return nil, fmt.Errorf("capability %q must have the form subject:type[,type]", entry)
		}
		subject = strings.TrimSpace(subject)
		capabilities[subject] = lo.Uniq(append(capabilities[subject], lo.Map(splitList(types, ","), func(sessionType string, _ int) string {
			return strings.ToLower(sessionType)
		})...))
	}
	return capabilities, nil
}
