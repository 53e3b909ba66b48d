package domain

import (
	"fmt"
	"math"
	"strings"
)

// Coordinate reference systems the engine understands.
const (
	CRSWGS84  = "EPSG:4326" // lon/lat degrees, source data
	CRSAlbers = "EPSG:5070" // US Albers Equal Area, meters, working CRS
)

// SquareMetersPerAcre converts projected area to acres.
const SquareMetersPerAcre = 4046.86

// Point is a coordinate pair: lon/lat in EPSG:4326, easting/northing meters
// in EPSG:5070.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Geometry is a single polygon exterior ring in a declared coordinate
// reference. The ring is implicitly closed; the first vertex is not repeated.
type Geometry struct {
	CRS  string  `json:"crs"`
	Ring []Point `json:"ring"`
}

// IsEmpty reports whether the geometry has too few vertices to bound an area.
func (g Geometry) IsEmpty() bool {
	return len(g.Ring) < 3
}

// AreaSquareMeters computes the shoelace area of the ring. Only meaningful in
// a projected CRS (EPSG:5070).
func (g Geometry) AreaSquareMeters() float64 {
	if g.IsEmpty() {
		return 0
	}
	var sum float64
	n := len(g.Ring)
	for i := 0; i < n; i++ {
		a, b := g.Ring[i], g.Ring[(i+1)%n]
		sum += a.X*b.Y - b.X*a.Y
	}
	return math.Abs(sum) / 2
}

// Acres converts the projected area to acres.
func (g Geometry) Acres() float64 {
	return g.AreaSquareMeters() / SquareMetersPerAcre
}

// Centroid returns the vertex-average centroid. Adequate for road-distance
// and soil-lookup anchoring; not an exact polygon centroid.
func (g Geometry) Centroid() Point {
	if len(g.Ring) == 0 {
		return Point{}
	}
	var c Point
	for _, p := range g.Ring {
		c.X += p.X
		c.Y += p.Y
	}
	c.X /= float64(len(g.Ring))
	c.Y /= float64(len(g.Ring))
	return c
}

// SelfIntersects reports whether any two non-adjacent ring edges cross.
// Best-effort O(n²) check; full OGC validity is out of scope.
func (g Geometry) SelfIntersects() bool {
	n := len(g.Ring)
	if n < 4 {
		return false
	}
	edge := func(i int) (Point, Point) {
		return g.Ring[i], g.Ring[(i+1)%n]
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			// Skip adjacent edges (shared vertex), including the wrap-around pair.
			if j == i || j == (i+1)%n || (j+1)%n == i {
				continue
			}
			a1, a2 := edge(i)
			b1, b2 := edge(j)
			if segmentsCross(a1, a2, b1, b2) {
				return true
			}
		}
	}
	return false
}

func segmentsCross(p1, p2, p3, p4 Point) bool {
	d1 := cross(p3, p4, p1)
	d2 := cross(p3, p4, p2)
	d3 := cross(p1, p2, p3)
	d4 := cross(p1, p2, p4)
	return ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0))
}

func cross(a, b, c Point) float64 {
	return (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
}

// Albers parameters for EPSG:5070 (CONUS). Spherical approximation: the real
// projection uses the GRS80 ellipsoid, but sub-meter authority-grade accuracy
// is a non-goal here.
const (
	albersRadius = 6378137.0
	albersLat0   = 23.0  // latitude of origin
	albersLon0   = -96.0 // central meridian
	albersSP1    = 29.5  // first standard parallel
	albersSP2    = 45.5  // second standard parallel
)

func albersConstants() (n, c, rho0 float64) {
	phi1 := albersSP1 * math.Pi / 180
	phi2 := albersSP2 * math.Pi / 180
	phi0 := albersLat0 * math.Pi / 180
	n = (math.Sin(phi1) + math.Sin(phi2)) / 2
	c = math.Cos(phi1)*math.Cos(phi1) + 2*n*math.Sin(phi1)
	rho0 = albersRadius * math.Sqrt(c-2*n*math.Sin(phi0)) / n
	return n, c, rho0
}

// Reproject converts the geometry to the target CRS. Supported pairs are
// EPSG:4326 ↔ EPSG:5070; anything else is an error so a bad source CRS is
// caught at the normalizer boundary instead of producing garbage coordinates.
func (g Geometry) Reproject(targetCRS string) (Geometry, error) {
	if g.CRS == targetCRS {
		return g, nil
	}
	switch {
	case g.CRS == CRSWGS84 && targetCRS == CRSAlbers:
		return g.transform(targetCRS, forwardAlbers)
	case g.CRS == CRSAlbers && targetCRS == CRSWGS84:
		return g.transform(targetCRS, inverseAlbers)
	default:
		return Geometry{}, fmt.Errorf("unsupported reprojection %s -> %s", g.CRS, targetCRS)
	}
}

func (g Geometry) transform(targetCRS string, fn func(Point) (Point, error)) (Geometry, error) {
	out := Geometry{CRS: targetCRS, Ring: make([]Point, len(g.Ring))}
	for i, p := range g.Ring {
		q, err := fn(p)
		if err != nil {
			return Geometry{}, fmt.Errorf("reproject vertex %d: %w", i, err)
		}
		out.Ring[i] = q
	}
	return out, nil
}

func forwardAlbers(p Point) (Point, error) {
	if p.Y < -90 || p.Y > 90 || p.X < -180 || p.X > 180 {
		return Point{}, fmt.Errorf("coordinate (%g, %g) outside lon/lat range", p.X, p.Y)
	}
	n, c, rho0 := albersConstants()
	phi := p.Y * math.Pi / 180
	lambda := p.X * math.Pi / 180
	lambda0 := albersLon0 * math.Pi / 180

	rho := albersRadius * math.Sqrt(c-2*n*math.Sin(phi)) / n
	theta := n * (lambda - lambda0)
	return Point{
		X: rho * math.Sin(theta),
		Y: rho0 - rho*math.Cos(theta),
	}, nil
}

func inverseAlbers(p Point) (Point, error) {
	n, c, rho0 := albersConstants()
	rho := math.Hypot(p.X, rho0-p.Y)
	theta := math.Atan2(p.X, rho0-p.Y)

	sinPhi := (c - (rho*n/albersRadius)*(rho*n/albersRadius)) / (2 * n)
	if sinPhi < -1 || sinPhi > 1 {
		return Point{}, fmt.Errorf("coordinate (%g, %g) outside projection domain", p.X, p.Y)
	}
	phi := math.Asin(sinPhi)
	lambda := albersLon0*math.Pi/180 + theta/n
	return Point{
		X: lambda * 180 / math.Pi,
		Y: phi * 180 / math.Pi,
	}, nil
}

// WKT renders the ring as a closed POLYGON in the geometry's current CRS,
// the shape the SDA intersection function expects (WGS-84 lon lat order).
func (g Geometry) WKT() string {
	if g.IsEmpty() {
		return "POLYGON EMPTY"
	}
	var b strings.Builder
	b.WriteString("POLYGON((")
	for _, p := range g.Ring {
		fmt.Fprintf(&b, "%.6f %.6f, ", p.X, p.Y)
	}
	fmt.Fprintf(&b, "%.6f %.6f))", g.Ring[0].X, g.Ring[0].Y)
	return b.String()
}
