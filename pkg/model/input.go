package model

import (
	"encoding/json"
	"fmt"
	"os"
	"slices"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

type SessionType string

const (
	Lecture   SessionType = "lecture"
	Practical SessionType = "practical"
)

type RawGroup struct {
	Name      string   `mapstructure:"name" validate:"required"`
	Students  uint64   `mapstructure:"students"`
	Subjects  []string `mapstructure:"subjects" validate:"dive,required"`
	Subgroups []string `mapstructure:"subgroups" validate:"dive,required"`
}

type RawLecturer struct {
	Name         string              `mapstructure:"name" validate:"required"`
	Capabilities map[string][]string `mapstructure:"capabilities" validate:"dive,keys,required,endkeys,dive,oneof=lecture practical"`
}

type RawRoom struct {
	Name     string `mapstructure:"name" validate:"required"`
	Capacity uint64 `mapstructure:"capacity"`
}

type RawSubject struct {
	Name           string  `mapstructure:"name" validate:"required"`
	TotalHours     float64 `mapstructure:"total_hours" validate:"gte=0"`
	LectureHours   float64 `mapstructure:"lecture_hours" validate:"gte=0"`
	PracticalHours float64 `mapstructure:"practical_hours" validate:"gte=0"`
	NeedsSubgroup  bool    `mapstructure:"needs_subgroup"`
}

type RawCatalog struct {
	Groups    []RawGroup    `mapstructure:"groups" validate:"dive"`
	Lecturers []RawLecturer `mapstructure:"lecturers" validate:"dive"`
	Rooms     []RawRoom     `mapstructure:"rooms" validate:"dive"`
	Subjects  []RawSubject  `mapstructure:"subjects" validate:"dive"`
}

type Group struct {
	Name      string
	Students  uint64
	Subjects  []string
	Subgroups []string
}

// SubgroupSize is half of the parent group, rounded down.
func (group Group) SubgroupSize() uint64 {
	return group.Students / 2
}

type Lecturer struct {
	Name         string
	Capabilities map[string][]SessionType
}

type Room struct {
	Name     string
	Capacity uint64
}

type Subject struct {
	Name           string
	TotalHours     float64
	LectureHours   float64
	PracticalHours float64
	NeedsSubgroup  bool
}

type Catalog struct {
	Groups    []Group
	Lecturers []Lecturer
	Rooms     []Room
	Subjects  []Subject
}

var validate = validator.New()

func CatalogFromJson(file string) (Catalog, error) {
	bytes, err := os.ReadFile(file)
	if err != nil {
		return Catalog{}, fmt.Errorf("cannot read catalog file %v: %w", file, err)
	}

	var inputJson map[string]any
	if err := json.Unmarshal(bytes, &inputJson); err != nil {
		return Catalog{}, fmt.Errorf("cannot parse catalog file %v: %w", file, err)
	}
	return CatalogFromMap(inputJson)
}

func CatalogFromYaml(file string) (Catalog, error) {
	bytes, err := os.ReadFile(file)
	if err != nil {
		return Catalog{}, fmt.Errorf("cannot read catalog file %v: %w", file, err)
	}

	var inputYaml map[string]any
	if err := yaml.Unmarshal(bytes, &inputYaml); err != nil {
		return Catalog{}, fmt.Errorf("cannot parse catalog file %v: %w", file, err)
	}
	return CatalogFromMap(inputYaml)
}

// CatalogFromMap decodes an already unmarshalled document (JSON or YAML) into a catalog
func CatalogFromMap(input map[string]any) (Catalog, error) {
	var rawCatalog RawCatalog
	if err := mapstructure.Decode(input, &rawCatalog); err != nil {
		return Catalog{}, fmt.Errorf("cannot decode catalog: %w", err)
	}
	return ProcessRawCatalog(rawCatalog)
}

func ProcessRawCatalog(rawCatalog RawCatalog) (Catalog, error) {
	if err := validate.Struct(rawCatalog); err != nil {
		return Catalog{}, fmt.Errorf("invalid catalog: %w", err)
	}

	//** Check names are unique per entity kind
	cohortNames := lo.FlatMap(rawCatalog.Groups, func(group RawGroup, _ int) []string {
		return append([]string{group.Name}, group.Subgroups...)
	})
	if duplicates := lo.FindDuplicates(cohortNames); len(duplicates) > 0 {
		return Catalog{}, fmt.Errorf("group and subgroup names must be unique: %v", duplicates)
	}
	if duplicates := lo.FindDuplicates(lo.Map(rawCatalog.Lecturers, func(lecturer RawLecturer, _ int) string { return lecturer.Name })); len(duplicates) > 0 {
		return Catalog{}, fmt.Errorf("lecturer names must be unique: %v", duplicates)
	}
	if duplicates := lo.FindDuplicates(lo.Map(rawCatalog.Rooms, func(room RawRoom, _ int) string { return room.Name })); len(duplicates) > 0 {
		return Catalog{}, fmt.Errorf("room names must be unique: %v", duplicates)
	}
	subjectNames := lo.Map(rawCatalog.Subjects, func(subject RawSubject, _ int) string { return subject.Name })
	if duplicates := lo.FindDuplicates(subjectNames); len(duplicates) > 0 {
		return Catalog{}, fmt.Errorf("subject names must be unique: %v", duplicates)
	}

	catalog := Catalog{
		Groups:    make([]Group, 0, len(rawCatalog.Groups)),
		Lecturers: make([]Lecturer, 0, len(rawCatalog.Lecturers)),
		Rooms:     make([]Room, 0, len(rawCatalog.Rooms)),
		Subjects:  make([]Subject, 0, len(rawCatalog.Subjects)),
	}

	//** Groups must reference known subjects
	for _, rawGroup := range rawCatalog.Groups {
		if unknown, ok := lo.Find(rawGroup.Subjects, func(subject string) bool {
			return !slices.Contains(subjectNames, subject)
		}); ok {
			return Catalog{}, fmt.Errorf("group \"%v\" references unknown subject \"%v\"", rawGroup.Name, unknown)
		}
		catalog.Groups = append(catalog.Groups, Group{
			Name:      rawGroup.Name,
			Students:  rawGroup.Students,
			Subjects:  slices.Clone(rawGroup.Subjects),
			Subgroups: slices.Clone(rawGroup.Subgroups),
		})
	}

	//** Lecturers must reference known subjects
	for _, rawLecturer := range rawCatalog.Lecturers {
		capabilities := make(map[string][]SessionType, len(rawLecturer.Capabilities))
		for subject, sessionTypes := range rawLecturer.Capabilities {
			if !slices.Contains(subjectNames, subject) {
				return Catalog{}, fmt.Errorf("lecturer \"%v\" references unknown subject \"%v\"", rawLecturer.Name, subject)
			}
			capabilities[subject] = lo.Uniq(lo.Map(sessionTypes, func(sessionType string, _ int) SessionType {
				return SessionType(sessionType)
			}))
		}
		catalog.Lecturers = append(catalog.Lecturers, Lecturer{
			Name:         rawLecturer.Name,
			Capabilities: capabilities,
		})
	}

	for _, rawRoom := range rawCatalog.Rooms {
		catalog.Rooms = append(catalog.Rooms, Room(rawRoom))
	}
	for _, rawSubject := range rawCatalog.Subjects {
		catalog.Subjects = append(catalog.Subjects, Subject(rawSubject))
	}

	return catalog, nil
}
