package controllers

import (
	"net/http"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"emd/internal/models"
	"emd/internal/providers"
	"emd/internal/services"
	"emd/internal/views"
)

// DashboardController renders the analytics page: engagement scatter,
// cumulative views and follower history, all with zoom/pan enabled.
type DashboardController struct {
	logger  providers.Logger
	service services.MetricsServiceInterface
}

func NewDashboardController(logger providers.Logger, service services.MetricsServiceInterface) *DashboardController {
	return &DashboardController{logger: logger, service: service}
}

func (dc *DashboardController) Dashboard(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("u")
	if key == "" {
		key = dc.service.LastUserKey()
	}
	if key == "" {
		key = models.UnknownUserKey
	}

	u, _ := dc.service.GetUser(key)
	if u == nil {
		u = models.NewUser()
	}
	ids, ok := dc.service.Visibility(key)
	if !ok {
		ids = views.DefaultVisibleSet(u)
	}
	visible := views.SelectPosts(u, ids)

	page := components.NewPage()
	page.PageTitle = "Engagement: " + key
	page.AddCharts(
		dc.scatterChart(visible),
		dc.cumulativeChart(visible),
		dc.followerChart(u),
	)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := page.Render(w); err != nil {
		dc.logger.Warnf(providers.TypeGet, "Dashboard render aborted: %s", err)
	}
}

func (dc *DashboardController) scatterChart(visible []*models.Post) *charts.Scatter {
	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Unique viewers vs interaction rate"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithDataZoomOpts(zoomOpts()...),
		charts.WithXAxisOpts(opts.XAxis{Name: "Unique viewers", Type: "value"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "IR %", Type: "value"}),
	)
	for _, s := range views.ScatterSeries(visible) {
		data := make([]opts.ScatterData, len(s.Points))
		for i, p := range s.Points {
			data[i] = opts.ScatterData{Value: []any{p.X, p.Y}}
		}
		scatter.AddSeries(s.Label, data,
			charts.WithItemStyleOpts(opts.ItemStyle{Color: s.Color}),
		)
	}
	return scatter
}

func (dc *DashboardController) cumulativeChart(visible []*models.Post) *charts.Line {
	agg := views.CumulativeViews(visible)
	return dc.timeLine("Total views over time", agg)
}

func (dc *DashboardController) followerChart(u *models.User) *charts.Line {
	return dc.timeLine("Followers over time", views.FollowerSeries(u))
}

func (dc *DashboardController) timeLine(title string, s views.Series) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithDataZoomOpts(zoomOpts()...),
		charts.WithYAxisOpts(opts.YAxis{Type: "value"}),
	)
	labels := make([]string, len(s.Points))
	data := make([]opts.LineData, len(s.Points))
	for i, p := range s.Points {
		labels[i] = time.UnixMilli(p.T).Format("01-02 15:04")
		data[i] = opts.LineData{Value: p.Y}
	}
	line.SetXAxis(labels)
	line.AddSeries(s.Label, data,
		charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}),
		charts.WithItemStyleOpts(opts.ItemStyle{Color: s.Color}),
	)
	return line
}

func zoomOpts() []opts.DataZoom {
	return []opts.DataZoom{
		{Type: "inside"},
		{Type: "slider"},
	}
}
