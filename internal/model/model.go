package model

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

// Design describes one glass piece design from the catalog.
type Design struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Width     float64 `json:"width"`     // mm
	Height    float64 `json:"height"`    // mm
	Thickness float64 `json:"thickness"` // mm
	Priority  int     `json:"priority"`  // lower values are processed first
}

func NewDesign(name string, w, h, thickness float64) Design {
	return Design{
		ID:        uuid.New().String()[:8],
		Name:      name,
		Width:     w,
		Height:    h,
		Thickness: thickness,
	}
}

// Area returns the design area in square mm.
func (d Design) Area() float64 {
	return d.Width * d.Height
}

// Requirement pairs a design with the number of copies to cut.
type Requirement struct {
	Design   Design `json:"design"`
	Quantity int    `json:"quantity"`
}

// Sheet is the stock material being cut. Immutable input to a run.
type Sheet struct {
	Width        float64 `json:"width"`  // mm
	Height       float64 `json:"height"` // mm
	Thickness    float64 `json:"thickness"`
	PricePerArea float64 `json:"price_per_area,omitempty"` // currency per square mm, reporting only
}

// Area returns the sheet area in square mm.
func (s Sheet) Area() float64 {
	return s.Width * s.Height
}

// Piece is one physical rectangular item to be cut. Pieces are created per
// optimization run by expanding requirements and do not outlive the run.
type Piece struct {
	ID        string  `json:"id"`
	DesignID  string  `json:"design_id"`
	Name      string  `json:"name"`
	Width     float64 `json:"width"`  // mm
	Height    float64 `json:"height"` // mm
	Thickness float64 `json:"thickness"`
	Area      float64 `json:"area"` // precomputed width*height
	Priority  int     `json:"priority"`

	// Placement state, written by the placement engine.
	Placed  bool    `json:"placed"`
	X       float64 `json:"x"` // lower-left corner in sheet coordinates
	Y       float64 `json:"y"`
	Rotated bool    `json:"rotated"` // 90 degree rotation
	Flipped bool    `json:"flipped"` // no-op for rectangular pieces
}

// PlacedWidth returns the effective width considering rotation.
func (p Piece) PlacedWidth() float64 {
	if p.Rotated {
		return p.Height
	}
	return p.Width
}

// PlacedHeight returns the effective height considering rotation.
func (p Piece) PlacedHeight() float64 {
	if p.Rotated {
		return p.Width
	}
	return p.Height
}

// OccupiedRect returns the rectangle the placed piece covers on the sheet.
func (p Piece) OccupiedRect() FreeRect {
	return FreeRect{X: p.X, Y: p.Y, Width: p.PlacedWidth(), Height: p.PlacedHeight()}
}

// FreeRect is an axis-aligned unplaced region of the sheet.
type FreeRect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Area returns the rectangle area in square mm.
func (r FreeRect) Area() float64 {
	return r.Width * r.Height
}

// Algorithm selects the placement strategy for a run.
type Algorithm string

const (
	AlgorithmBLF     Algorithm = "blf"     // deterministic bottom-left-fill
	AlgorithmGreedy  Algorithm = "greedy"  // first-fit baseline
	AlgorithmGenetic Algorithm = "genetic" // population search
)

// Algorithms lists all supported placement algorithms.
func Algorithms() []Algorithm {
	return []Algorithm{AlgorithmBLF, AlgorithmGreedy, AlgorithmGenetic}
}

// PlacementOptions configures a placement run.
type PlacementOptions struct {
	AllowRotation bool    `json:"allow_rotation"` // evaluate the 90 degree orientation
	AllowFlipping bool    `json:"allow_flipping"` // no-op for rectangular pieces
	MinimumGap    float64 `json:"minimum_gap"`    // mm clearance between placed pieces
	EdgeMargin    float64 `json:"edge_margin"`    // mm clearance from the sheet boundary
	TimeLimit     float64 `json:"time_limit"`     // seconds, soft budget for the genetic strategy
	QualityTarget float64 `json:"quality_target"` // 0..1 utilization fraction for early exit
}

// DefaultOptions returns the standard options for glass scoring.
func DefaultOptions() PlacementOptions {
	return PlacementOptions{
		AllowRotation: true,
		AllowFlipping: false,
		MinimumGap:    3.0,
		EdgeMargin:    5.0,
		TimeLimit:     30.0,
		QualityTarget: 0.95,
	}
}

// Validate checks option values at the call boundary.
func (o PlacementOptions) Validate() error {
	if o.MinimumGap < 0 {
		return fmt.Errorf("minimum gap must not be negative, got %.2f", o.MinimumGap)
	}
	if o.EdgeMargin < 0 {
		return fmt.Errorf("edge margin must not be negative, got %.2f", o.EdgeMargin)
	}
	if o.TimeLimit < 0 {
		return fmt.Errorf("time limit must not be negative, got %.2f", o.TimeLimit)
	}
	if o.QualityTarget < 0 || o.QualityTarget > 1 {
		return fmt.Errorf("quality target must be within [0, 1], got %.2f", o.QualityTarget)
	}
	return nil
}

// SegmentOrientation is the direction of a straight cut.
type SegmentOrientation string

const (
	SegmentHorizontal SegmentOrientation = "horizontal"
	SegmentVertical   SegmentOrientation = "vertical"
)

// CutSegment is one straight scoring cut on the sheet.
type CutSegment struct {
	ID          string             `json:"id"`
	Orientation SegmentOrientation `json:"orientation"`
	StartX      float64            `json:"start_x"`
	StartY      float64            `json:"start_y"`
	EndX        float64            `json:"end_x"`
	EndY        float64            `json:"end_y"`
	Order       int                `json:"order"`
	Tool        string             `json:"tool"`  // metadata, not consumed algorithmically
	Speed       float64            `json:"speed"` // mm/s, metadata
	PieceIDs    []string           `json:"piece_ids"`
}

// Length returns the segment length in mm.
func (s CutSegment) Length() float64 {
	dx := s.EndX - s.StartX
	dy := s.EndY - s.StartY
	return math.Sqrt(dx*dx + dy*dy)
}

// Statistics holds the derived metrics of a completed placement.
type Statistics struct {
	TotalPieces        int     `json:"total_pieces"`
	PlacedPieces       int     `json:"placed_pieces"`
	UnplacedPieces     int     `json:"unplaced_pieces"`
	SheetArea          float64 `json:"sheet_area"`
	UsedArea           float64 `json:"used_area"`
	WasteArea          float64 `json:"waste_area"`
	UtilizationRate    float64 `json:"utilization_rate"`    // percent
	WasteRate          float64 `json:"waste_rate"`          // percent
	MaterialEfficiency float64 `json:"material_efficiency"` // percent of requested area placed
	Density            float64 `json:"density"`             // placed pieces per square meter
	LargestWaste       float64 `json:"largest_waste"`       // square mm, grid approximation
	EstimatedCost      float64 `json:"estimated_cost,omitempty"`
	WasteCost          float64 `json:"waste_cost,omitempty"`
}

// PlacementResult is the output of one placement strategy run.
type PlacementResult struct {
	Placed        []Piece    `json:"placed"`
	Unplaced      []Piece    `json:"unplaced"`
	LeftoverSpace []FreeRect `json:"leftover_space"`
}

// OptimizationRecord is the immutable output of one optimization run.
type OptimizationRecord struct {
	ID           string           `json:"id"`
	Algorithm    Algorithm        `json:"algorithm"`
	Sheet        Sheet            `json:"sheet"`
	Requirements []Requirement    `json:"requirements"`
	Result       PlacementResult  `json:"result"`
	Stats        Statistics       `json:"stats"`
	CutPaths     []CutSegment     `json:"cut_paths"`
	Duration     time.Duration    `json:"duration"`
	CreatedAt    time.Time        `json:"created_at"`
	Options      PlacementOptions `json:"options"`
}
