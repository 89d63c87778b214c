package game

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/goofansu/tankgame/internal/logging"
)

// ErrNoSize is returned for a map without a size directive.
var ErrNoSize = errors.New("map: missing size")

// Map is a parsed map file.
//
// The format is one directive per line, '#' starts a comment:
//
//	name arena
//	size 20 15
//	spawn 3 7.5 0
//	enemy 16 7.5 3.14 2
//	powerup 10 3 machine_gun
//	barrier 10 7.5
//	wall 6 4 1 7
//	toxic 10 30 0.4
type Map struct {
	Name     string
	Width    float64
	Height   float64
	Spawn    Spawn
	Enemies  []EnemySpawn
	Powerups []PowerupSpawn
	Barriers []Vec2
	Walls    []Rect
	Toxic    *ToxicConfig
}

// Spawn is the player start.
type Spawn struct {
	Pos   Vec2
	Angle float64
}

// EnemySpawn places one enemy.
type EnemySpawn struct {
	Pos   Vec2
	Angle float64
	Type  EnemyType
}

// PowerupSpawn places one pickup.
type PowerupSpawn struct {
	Pos  Vec2
	Type Weapon
}

// DefaultMapText is used when no map is configured.
const DefaultMapText = `name default
size 20 15
spawn 3 7.5 0
enemy 16 4 3.14159 1
enemy 16 11 3.14159 2
barrier 10 7.5
wall 7 2 1 3
wall 7 10 1 3
powerup 10 12 machine_gun
`

// LoadMap reads and parses a map file.
func LoadMap(path string, log logrus.FieldLogger) (*Map, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("map: %w", err)
	}
	defer f.Close()
	m, err := ParseMap(f, log)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// ParseMap parses map text. Unknown directives are logged and skipped;
// malformed numbers are errors.
func ParseMap(r io.Reader, log logrus.FieldLogger) (*Map, error) {
	log = logging.Or(log, logging.CatGame)
	m := &Map{Name: "untitled"}
	haveSpawn := false

	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := sc.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		f := strings.Fields(line)
		if len(f) == 0 {
			continue
		}

		nums := func(n int) ([]float64, error) {
			if len(f)-1 < n {
				return nil, fmt.Errorf("line %d: %s needs %d values", lineNo, f[0], n)
			}
			out := make([]float64, 0, len(f)-1)
			for _, s := range f[1:] {
				v, err := strconv.ParseFloat(s, 64)
				if err != nil {
					return nil, fmt.Errorf("line %d: %s: bad number %q", lineNo, f[0], s)
				}
				out = append(out, v)
			}
			return out, nil
		}

		switch f[0] {
		case "name":
			if len(f) > 1 {
				m.Name = strings.Join(f[1:], " ")
			}
		case "size":
			v, err := nums(2)
			if err != nil {
				return nil, err
			}
			if v[0] <= 0 || v[1] <= 0 {
				return nil, fmt.Errorf("line %d: size must be positive", lineNo)
			}
			m.Width, m.Height = v[0], v[1]
		case "spawn":
			v, err := nums(2)
			if err != nil {
				return nil, err
			}
			m.Spawn = Spawn{Pos: Vec2{v[0], v[1]}}
			if len(v) > 2 {
				m.Spawn.Angle = v[2]
			}
			haveSpawn = true
		case "enemy":
			v, err := nums(4)
			if err != nil {
				return nil, err
			}
			lvl := EnemyType(v[3])
			if lvl < EnemySentry || lvl > EnemySniper {
				log.Warnf("Map line %d: unknown enemy level %v, using sentry", lineNo, v[3])
				lvl = EnemySentry
			}
			m.Enemies = append(m.Enemies, EnemySpawn{Pos: Vec2{v[0], v[1]}, Angle: v[2], Type: lvl})
		case "powerup":
			if len(f) < 4 {
				return nil, fmt.Errorf("line %d: powerup needs x y type", lineNo)
			}
			name := f[3]
			f = f[:3]
			v, err := nums(2)
			if err != nil {
				return nil, err
			}
			typ, ok := WeaponByName(name)
			if !ok || typ == WeaponDefault {
				log.Warnf("Map line %d: unknown powerup type %q", lineNo, name)
				continue
			}
			m.Powerups = append(m.Powerups, PowerupSpawn{Pos: Vec2{v[0], v[1]}, Type: typ})
		case "barrier":
			v, err := nums(2)
			if err != nil {
				return nil, err
			}
			m.Barriers = append(m.Barriers, Vec2{v[0], v[1]})
		case "wall":
			v, err := nums(4)
			if err != nil {
				return nil, err
			}
			m.Walls = append(m.Walls, Rect{v[0], v[1], v[2], v[3]})
		case "toxic":
			v, err := nums(3)
			if err != nil {
				return nil, err
			}
			m.Toxic = &ToxicConfig{Delay: v[0], Duration: v[1], SafeRatio: v[2]}
		default:
			log.Warnf("Map line %d: unknown directive '%s'", lineNo, f[0])
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("map: %w", err)
	}
	if m.Width == 0 {
		return nil, ErrNoSize
	}
	if !haveSpawn {
		m.Spawn.Pos = Vec2{m.Width / 2, m.Height / 2}
	}
	return m, nil
}
