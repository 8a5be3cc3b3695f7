package service_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/okian/compensa/internal/adapters/bands"
	"github.com/okian/compensa/internal/adapters/ingest"
	service "github.com/okian/compensa/internal/app"
	"github.com/okian/compensa/internal/domain/analytics"
	"github.com/okian/compensa/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

const uploadCSV = `id,department,role,level,base_salary,aum,team_size,performance_quintile,last_year_revenue,mrt_status
E1,Global Equities,Fund Manager,Senior,120000,250000000,3,Q3,3000000,no
E2,Global Equities,Fund Manager,Senior,140000,250000000,1,Q1,9000000,yes
E3,,Analyst,Junior,60000,50000000,2,Q4,500000,no
E4,Alternatives,Fund Manager,Senior,,250000000,3,Q3,3000000,no
`

func TestServiceIntegration(t *testing.T) {
	Convey("Given a service backed by a cached band table", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		cached := bands.NewCached(testTable(), time.Minute)
		svc := service.New(
			service.WithWorkerCount(2),
			service.WithBandLookup(cached),
		)
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("When an uploaded CSV is summarized", func() {
			employees, err := ingest.ParseCSV(ctx, strings.NewReader(uploadCSV))
			So(err, ShouldBeNil)
			So(employees, ShouldHaveLength, 4)

			res, err := svc.Summarize(ctx, employees, testConfig())
			So(err, ShouldBeNil)

			Convey("Then the failed row is reported and excluded", func() {
				So(res.Succeeded, ShouldEqual, 3)
				So(res.Failed, ShouldEqual, 1)
				So(res.Items[3].Error.Field, ShouldEqual, model.KeyBaseSalary)
				So(res.Summary.TotalEmployees, ShouldEqual, 4)
			})

			Convey("And departments without a name roll up as Unknown", func() {
				So(res.Summary.DeptTotals, ShouldContainKey, analytics.Unknown)
				So(res.Summary.DeptTotals, ShouldNotContainKey, "Alternatives")
			})

			Convey("And the band lookups were cached", func() {
				So(cached.Len(), ShouldEqual, 2)
			})

			Convey("And total_flags matches the distribution", func() {
				total := 0
				for _, n := range res.Summary.FlagDistribution {
					total += n
				}
				So(res.Summary.TotalFlags, ShouldEqual, total)
			})
		})
	})

	Convey("Given a service under concurrent batches", t, func() {
		ctx := context.Background()
		svc := service.New(service.WithWorkerCount(4), service.WithBandLookup(testTable()))
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("When many goroutines submit batches", func() {
			const callers = 8
			var wg sync.WaitGroup
			totals := make([]string, callers)
			errs := make([]error, callers)
			for i := range callers {
				wg.Add(1)
				go func() {
					defer wg.Done()
					emps := []model.Employee{testEmployee("A"), testEmployee("B")}
					res, err := svc.Summarize(ctx, emps, testConfig())
					errs[i] = err
					totals[i] = res.Summary.TotalPayroll.String()
				}()
			}
			wg.Wait()

			Convey("Then every caller sees the same deterministic payroll", func() {
				for i := range callers {
					So(errs[i], ShouldBeNil)
					So(totals[i], ShouldEqual, totals[0])
				}
				So(svc.GetStats().Batches, ShouldEqual, callers)
			})
		})
	})
}
