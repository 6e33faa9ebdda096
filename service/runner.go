package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"proxyprobe/log"
	"proxyprobe/models"

	"github.com/fatih/color"
)

// Runner 完整的一次运行：抓取列表，按协议族验证并保存
type Runner struct {
	source   CandidateSource
	prober   *Prober
	sink     ResultSink
	reporter *Reporter
	families []models.ProtocolFamily
}

// NewRunner 创建运行器，families 为空时处理全部协议族
func NewRunner(source CandidateSource, prober *Prober, sink ResultSink, reporter *Reporter, families []models.ProtocolFamily) *Runner {
	if len(families) == 0 {
		families = models.Families()
	}
	if reporter != nil {
		prober.Subscribe(reporter)
	}
	return &Runner{
		source:   source,
		prober:   prober,
		sink:     sink,
		reporter: reporter,
		families: families,
	}
}

// Run 依次处理每个协议族，ctx 取消时停止且不写入未完成的批次
// 返回的错误合并了所有写入失败
func (r *Runner) Run(ctx context.Context) (map[models.ProtocolFamily]models.BatchResult, error) {
	candidates := r.source.Candidates(ctx)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	grouped := make(map[models.ProtocolFamily][]models.Candidate)
	for _, c := range candidates {
		grouped[c.Family] = append(grouped[c.Family], c)
	}

	results := make(map[models.ProtocolFamily]models.BatchResult, len(r.families))
	var errs []error
	for _, family := range r.families {
		group := grouped[family]
		log.Info("[+] Checking %d %s proxies...", len(group), family.Label())
		if r.reporter != nil {
			r.reporter.Begin(family, len(group))
		}

		result := r.prober.RunFamily(ctx, family, group)
		if err := ctx.Err(); err != nil {
			log.Warn("Run aborted during %s: %v", family.Label(), err)
			errs = append(errs, err)
			break
		}
		results[family] = result

		path, err := r.sink.Write(result)
		if err != nil {
			log.Error("Failed to save %s results: %v", family.Label(), err)
			errs = append(errs, err)
			continue
		}
		if result.LiveCount == 0 {
			log.Warn("[!] No live %s proxies found", family.Label())
			continue
		}
		log.Info("%s %d live %s proxies saved to %s", color.GreenString("[✓]"), result.LiveCount, family, path)
	}

	log.Info("%s", Summary(r.families, results))
	return results, errors.Join(errs...)
}

// Summary 汇总行，例如 Summary: HTTP=3, SOCKS4=0, SOCKS5=1
func Summary(families []models.ProtocolFamily, results map[models.ProtocolFamily]models.BatchResult) string {
	parts := make([]string, 0, len(families))
	for _, family := range families {
		parts = append(parts, fmt.Sprintf("%s=%d", family.Label(), results[family].LiveCount))
	}
	return "Summary: " + strings.Join(parts, ", ")
}
