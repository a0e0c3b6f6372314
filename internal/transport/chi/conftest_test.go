package chi

import (
	"context"

	healthuc "github.com/kailas-cloud/bookrec/internal/usecase/health"
	"github.com/kailas-cloud/bookrec/internal/usecase/recommend"
)

type mockRecommender struct {
	recs    []recommend.Recommendation
	popular []recommend.PopularBook
	err     error

	gotTitle string
	gotK     int
	calls    int
}

func (m *mockRecommender) Recommend(_ context.Context, title string, k int) ([]recommend.Recommendation, error) {
	m.calls++
	m.gotTitle = title
	m.gotK = k
	if m.err != nil {
		return nil, m.err
	}
	return m.recs, nil
}

func (m *mockRecommender) Popular(_ context.Context) ([]recommend.PopularBook, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.popular, nil
}

type mockHealth struct {
	report healthuc.Report
}

func (m *mockHealth) Check(_ context.Context) healthuc.Report {
	return m.report
}

func healthyReport() healthuc.Report {
	return healthuc.Report{
		Status: healthuc.Healthy,
		Checks: map[string]healthuc.CheckResult{"index": healthuc.CheckOK},
	}
}
