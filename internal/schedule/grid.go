package schedule

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/NelsonCereno/Tingeso-2/internal/models"
)

var (
	ErrDataSourceUnavailable = errors.New("reservation store unavailable")
	ErrUnknownBlock          = errors.New("unknown time block")
)

// weekDays fixes the row order of the grid.
var weekDays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// Block is a half-open [Start, End) interval of the operating day, expressed
// in minutes since midnight.
type Block struct {
	Label    string
	StartMin int
	EndMin   int
}

// ParseBlocks reads a comma-separated "HH:MM-HH:MM,..." list and returns the
// blocks sorted chronologically regardless of configuration order.
func ParseBlocks(spec string) ([]Block, error) {
	parts := strings.Split(spec, ",")
	blocks := make([]Block, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		bounds := strings.SplitN(p, "-", 2)
		if len(bounds) != 2 {
			return nil, fmt.Errorf("invalid time block %q", p)
		}
		start, err := parseClock(bounds[0])
		if err != nil {
			return nil, fmt.Errorf("invalid time block %q: %w", p, err)
		}
		end, err := parseClock(bounds[1])
		if err != nil {
			return nil, fmt.Errorf("invalid time block %q: %w", p, err)
		}
		if end <= start {
			return nil, fmt.Errorf("invalid time block %q: end before start", p)
		}
		blocks = append(blocks, Block{Label: p, StartMin: start, EndMin: end})
	}
	if len(blocks) == 0 {
		return nil, errors.New("no time blocks configured")
	}
	sort.Slice(blocks, func(i, j int) bool { return blocks[i].StartMin < blocks[j].StartMin })
	return blocks, nil
}

func parseClock(s string) (int, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, err
	}
	return t.Hour()*60 + t.Minute(), nil
}

// ReservationSummary is the grid's view of a reservation.
type ReservationSummary struct {
	ID              uint                     `json:"id"`
	StartTime       time.Time                `json:"start_time"`
	DurationMinutes int                      `json:"duration_minutes"`
	PartySize       int                      `json:"party_size"`
	Status          models.ReservationStatus `json:"status"`
	TotalFare       float64                  `json:"total_fare"`
}

// WeekGrid maps weekday name -> block label -> reservations in that block.
// Days and Blocks carry the display order, since the map itself does not.
type WeekGrid struct {
	Days             []string                                   `json:"days"`
	Blocks           []string                                   `json:"blocks"`
	Grid             map[string]map[string][]ReservationSummary `json:"grid"`
	From             time.Time                                  `json:"from"`
	To               time.Time                                  `json:"to"`
	TotalAssignments int                                        `json:"total_assignments"`
	OccupiedBlocks   int                                        `json:"occupied_blocks"`
	TotalBlocks      int                                        `json:"total_blocks"`
	OccupancyPercent float64                                    `json:"occupancy_percent"`
}

// GridStats summarizes occupancy for a date range.
type GridStats struct {
	TotalReservations int            `json:"total_reservations"`
	OccupiedBlocks    int            `json:"occupied_blocks"`
	TotalBlocks       int            `json:"total_blocks"`
	OccupancyPercent  float64        `json:"occupancy_percent"`
	ReservationsByDay map[string]int `json:"reservations_by_day"`
	From              string         `json:"from"`
	To                string         `json:"to"`
}

// BlockAvailability reports remaining capacity of one block on one date.
type BlockAvailability struct {
	Available      bool   `json:"available"`
	Date           string `json:"date"`
	Block          string `json:"block"`
	PartySize      int    `json:"party_size"`
	SeatsOccupied  int    `json:"seats_occupied"`
	BlockCapacity  int    `json:"block_capacity"`
	ReservationsIn int    `json:"reservations_in_block"`
}

// ReservationSource is the read-only slice of the store the builder needs.
type ReservationSource interface {
	FindBetween(ctx context.Context, from, to time.Time) ([]models.Reservation, error)
}

// GridBuilder projects reservations onto the weekly occupancy grid. Purely a
// read/fold: it performs no writes.
type GridBuilder struct {
	source        ReservationSource
	blocks        []Block
	blockCapacity int
}

func NewGridBuilder(source ReservationSource, blocks []Block, blockCapacity int) *GridBuilder {
	return &GridBuilder{source: source, blocks: blocks, blockCapacity: blockCapacity}
}

// BuildGrid folds every reservation starting within [from, to] (whole
// calendar days) into the blocks its own time window overlaps, on its own
// start date's weekday only.
func (g *GridBuilder) BuildGrid(ctx context.Context, from, to time.Time) (*WeekGrid, error) {
	reservations, err := g.load(ctx, from, to)
	if err != nil {
		return nil, err
	}

	grid := &WeekGrid{
		Days:   weekDays,
		Blocks: blockLabels(g.blocks),
		Grid:   make(map[string]map[string][]ReservationSummary, len(weekDays)),
		From:   from,
		To:     to,
	}
	for _, day := range weekDays {
		grid.Grid[day] = make(map[string][]ReservationSummary, len(g.blocks))
		for _, b := range g.blocks {
			grid.Grid[day][b.Label] = []ReservationSummary{}
		}
	}

	for _, res := range reservations {
		day := res.StartTime.Weekday().String()
		for _, b := range g.blocks {
			if occupiesBlock(&res, b) {
				grid.Grid[day][b.Label] = append(grid.Grid[day][b.Label], toSummary(&res))
				grid.TotalAssignments++
			}
		}
	}

	for _, day := range weekDays {
		for _, b := range g.blocks {
			if len(grid.Grid[day][b.Label]) > 0 {
				grid.OccupiedBlocks++
			}
		}
	}
	grid.TotalBlocks = len(weekDays) * len(g.blocks)
	grid.OccupancyPercent = occupancyPercent(grid.OccupiedBlocks, grid.TotalBlocks)
	return grid, nil
}

// Stats aggregates the grid into per-day counts and occupancy numbers.
func (g *GridBuilder) Stats(ctx context.Context, from, to time.Time) (*GridStats, error) {
	grid, err := g.BuildGrid(ctx, from, to)
	if err != nil {
		return nil, err
	}

	stats := &GridStats{
		OccupiedBlocks:    grid.OccupiedBlocks,
		TotalBlocks:       grid.TotalBlocks,
		OccupancyPercent:  grid.OccupancyPercent,
		ReservationsByDay: make(map[string]int, len(weekDays)),
		From:              from.Format("2006-01-02"),
		To:                to.Format("2006-01-02"),
	}
	for _, day := range weekDays {
		count := 0
		for _, b := range g.blocks {
			count += len(grid.Grid[day][b.Label])
		}
		stats.ReservationsByDay[day] = count
		stats.TotalReservations += count
	}
	return stats, nil
}

// BlockAvailability reports whether a party still fits into one block on one
// date, against the configured per-block seat capacity.
func (g *GridBuilder) BlockAvailability(ctx context.Context, date time.Time, blockLabel string, partySize int) (*BlockAvailability, error) {
	block, err := g.findBlock(blockLabel)
	if err != nil {
		return nil, err
	}

	reservations, err := g.load(ctx, date, date)
	if err != nil {
		return nil, err
	}

	occupied := 0
	inBlock := 0
	for _, res := range reservations {
		if !res.IsActive() {
			continue
		}
		if occupiesBlock(&res, block) {
			occupied += res.PartySize
			inBlock++
		}
	}

	return &BlockAvailability{
		Available:      occupied+partySize <= g.blockCapacity,
		Date:           date.Format("2006-01-02"),
		Block:          block.Label,
		PartySize:      partySize,
		SeatsOccupied:  occupied,
		BlockCapacity:  g.blockCapacity,
		ReservationsIn: inBlock,
	}, nil
}

func (g *GridBuilder) load(ctx context.Context, from, to time.Time) ([]models.Reservation, error) {
	dayStart := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, from.Location())
	dayEnd := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, to.Location()).AddDate(0, 0, 1)

	reservations, err := g.source.FindBetween(ctx, dayStart, dayEnd)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDataSourceUnavailable, err)
	}
	return reservations, nil
}

func (g *GridBuilder) findBlock(label string) (Block, error) {
	for _, b := range g.blocks {
		if b.Label == strings.TrimSpace(label) {
			return b, nil
		}
	}
	return Block{}, fmt.Errorf("%w: %q", ErrUnknownBlock, label)
}

// occupiesBlock applies the half-open overlap rule to the reservation's
// time-of-day window on its own start date.
func occupiesBlock(res *models.Reservation, b Block) bool {
	startMin := res.StartTime.Hour()*60 + res.StartTime.Minute()
	endMin := startMin + res.DurationMinutes
	return startMin < b.EndMin && endMin > b.StartMin
}

func toSummary(res *models.Reservation) ReservationSummary {
	return ReservationSummary{
		ID:              res.ID,
		StartTime:       res.StartTime,
		DurationMinutes: res.DurationMinutes,
		PartySize:       res.PartySize,
		Status:          res.Status,
		TotalFare:       res.TotalFare,
	}
}

func blockLabels(blocks []Block) []string {
	labels := make([]string, len(blocks))
	for i, b := range blocks {
		labels[i] = b.Label
	}
	return labels
}

func occupancyPercent(occupied, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(occupied)/float64(total)*10000) / 100
}
