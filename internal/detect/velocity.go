package detect

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/geodesylab/slowslip/internal/domain"
)

// maxCondition bounds the condition number of the weighted normal matrix.
// Fits beyond it are rejected as near-singular instead of silently producing
// noise-dominated estimates.
const maxCondition = 1e12

var errSingular = fmt.Errorf("singular weighted design matrix")

// fitTrend performs a weighted least-squares linear fit of position against
// day, weights 1/sigma². It returns the trend-line displacement between the
// first and last observed day — the fitted difference, not the raw data
// difference — and the square root of the slope-variance term of the model
// covariance (XᵀWX)⁻¹.
func fitTrend(days, pos, sigma []float64) (displacement, dispSigma float64, err error) {
	if len(days) < 2 {
		return 0, 0, fmt.Errorf("need at least 2 observations, have %d", len(days))
	}

	var sw, swt, swtt, swy, swty float64
	for i := range days {
		w := 1.0 / (sigma[i] * sigma[i])
		sw += w
		swt += w * days[i]
		swtt += w * days[i] * days[i]
		swy += w * pos[i]
		swty += w * days[i] * pos[i]
	}

	// Normal equations for design X = [day, 1]: beta[0] is the slope.
	xtwx := mat.NewSymDense(2, []float64{swtt, swt, swt, sw})
	xtwy := mat.NewVecDense(2, []float64{swty, swy})

	var chol mat.Cholesky
	if ok := chol.Factorize(xtwx); !ok {
		return 0, 0, errSingular
	}
	if chol.Cond() > maxCondition {
		return 0, 0, errSingular
	}

	var beta mat.VecDense
	if err := chol.SolveVecTo(&beta, xtwy); err != nil {
		return 0, 0, errSingular
	}
	var cov mat.SymDense
	if err := chol.InverseTo(&cov); err != nil {
		return 0, 0, errSingular
	}

	slope := beta.AtVec(0)
	span := days[len(days)-1] - days[0]
	return slope * span, math.Sqrt(cov.At(0, 0)), nil
}

// EstimateDisplacements fits east and north displacements for every
// assignment, independently per component. Failures (too few observations,
// singular fits) leave that component unreported and are returned for logging;
// they never abort the batch.
func EstimateDisplacements(net *domain.Network, assignments []domain.Assignment) (map[[2]int]domain.Displacement, []error) {
	displacements := make(map[[2]int]domain.Displacement, len(assignments))
	var errs []error

	for _, a := range assignments {
		s := &net.Stations[a.Station]
		var disp domain.Displacement

		east, eastErr := fitAssignment(s, a, s.East, s.EastSigma)
		if eastErr != nil {
			errs = append(errs, componentError(s.Name, a.Spike, "east", eastErr))
		} else {
			disp.East, disp.EastSigma, disp.EastOK = east[0], east[1], true
		}

		north, northErr := fitAssignment(s, a, s.North, s.NorthSigma)
		if northErr != nil {
			errs = append(errs, componentError(s.Name, a.Spike, "north", northErr))
		} else {
			disp.North, disp.NorthSigma, disp.NorthOK = north[0], north[1], true
		}

		displacements[[2]int{a.Station, a.Spike}] = disp
	}
	return displacements, errs
}

// fitAssignment gathers the valid observation days of one component inside the
// assigned span and fits the trend over them.
func fitAssignment(s *domain.Station, a domain.Assignment, pos, sigma []float64) ([2]float64, error) {
	var days, y, sig []float64
	for d := a.StartDay; d < a.StartDay+a.Duration && d < len(pos); d++ {
		if d < 0 || !s.Observed(d) || sigma[d] <= 0 {
			continue
		}
		days = append(days, float64(d))
		y = append(y, pos[d])
		sig = append(sig, sigma[d])
	}
	if len(days) < 2 {
		return [2]float64{}, &InputShapeError{
			Station: s.Name,
			Reason:  fmt.Sprintf("%d observation days in event span, need at least 2", len(days)),
		}
	}
	displacement, dispSigma, err := fitTrend(days, y, sig)
	if err != nil {
		return [2]float64{}, err
	}
	return [2]float64{displacement, dispSigma}, nil
}

func componentError(station string, spike int, component string, err error) error {
	if err == errSingular {
		return &SingularFitError{Station: station, Spike: spike, Component: component}
	}
	return err
}
