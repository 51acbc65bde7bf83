package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"datadesk/adapters/excel"
	"datadesk/domain/core"
	"datadesk/domain/dataset"
	"datadesk/internal"
	apperrors "datadesk/internal/errors"
	"datadesk/ports"

	"golang.org/x/sync/semaphore"
)

// Config holds the service limits
type Config struct {
	MaxUploadBytes      int64
	PreviewLimit        int
	AllowedExtensions   []string
	MaxConcurrentParses int64
	Reader              excel.Config

	LLMModel     string
	LLMMaxTokens int
	ContextRows  int
}

// DefaultConfig mirrors the configuration defaults
func DefaultConfig() Config {
	return Config{
		MaxUploadBytes:      10 * 1024 * 1024,
		PreviewLimit:        10,
		MaxConcurrentParses: 4,
		Reader:              excel.DefaultConfig(),
		LLMModel:            "gpt-4o-mini",
		LLMMaxTokens:        1024,
		ContextRows:         20,
	}
}

const summaryPrompt = "Summarize this data: describe what it contains, notable columns, value ranges and anything that looks wrong."

// Service runs the ingestion pipeline against stored files. It keeps no
// state between calls beyond the parse semaphore and per-owner upload locks.
type Service struct {
	cfg      Config
	files    ports.FileRepository
	results  ports.ResultRepository
	blobs    ports.BlobStorage
	quota    ports.QuotaProvider
	llm      ports.LLMClient
	detector *Detector
	parser   *Parser
	parses   *semaphore.Weighted
	uploads  ownerLocks
	logger   *internal.Logger
}

// ownerLocks holds one mutex per owner so an owner's quota check and the
// record insert that consumes the quota run as one step.
type ownerLocks struct {
	m sync.Map
}

func (l *ownerLocks) lock(owner core.ID) func() {
	v, _ := l.m.LoadOrStore(owner, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// NewService wires the pipeline to its collaborators. llm may be nil, in
// which case Ask and Summarize report the LLM as unavailable.
func NewService(
	cfg Config,
	files ports.FileRepository,
	results ports.ResultRepository,
	blobs ports.BlobStorage,
	quota ports.QuotaProvider,
	llm ports.LLMClient,
) *Service {
	if cfg.MaxConcurrentParses <= 0 {
		cfg.MaxConcurrentParses = 1
	}
	if cfg.PreviewLimit <= 0 {
		cfg.PreviewLimit = DefaultConfig().PreviewLimit
	}
	if cfg.ContextRows <= 0 {
		cfg.ContextRows = DefaultConfig().ContextRows
	}
	return &Service{
		cfg:      cfg,
		files:    files,
		results:  results,
		blobs:    blobs,
		quota:    quota,
		llm:      llm,
		detector: NewDetector(cfg.AllowedExtensions),
		parser:   NewParser(cfg.Reader),
		parses:   semaphore.NewWeighted(cfg.MaxConcurrentParses),
		logger:   internal.DefaultLogger.With("IngestService"),
	}
}

// DefaultPreviewLimit is used when a caller does not ask for a limit
func (s *Service) DefaultPreviewLimit() int {
	return s.cfg.PreviewLimit
}

// Ingest validates, parses and stores an upload. Checks run cheapest
// first: size, format, quota, then parsing. Nothing is persisted unless
// every step succeeds.
func (s *Service) Ingest(ctx context.Context, content []byte, filename string, owner core.ID) (*dataset.UploadedFile, error) {
	start := time.Now()
	if owner.IsEmpty() {
		return nil, apperrors.Unauthorized("an authenticated owner is required")
	}
	if size := int64(len(content)); size > s.cfg.MaxUploadBytes {
		return nil, apperrors.SizeExceeded(size, s.cfg.MaxUploadBytes)
	}
	ft, err := s.detector.Detect(filename)
	if err != nil {
		return nil, err
	}
	if len(content) == 0 {
		return nil, apperrors.InvalidInput("file is empty")
	}

	unlock := s.uploads.lock(owner)
	defer unlock()

	remaining, err := s.quota.RemainingUploads(ctx, owner)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to check upload quota")
	}
	if remaining <= 0 {
		s.logger.Info("Rejected upload %q for %s: quota exhausted", filename, owner)
		return nil, apperrors.QuotaExceeded()
	}

	parsed, err := s.parse(ctx, ft, content)
	if err != nil {
		return nil, err
	}

	file := dataset.NewUploadedFile(owner, filename, ft, content)
	if ft.IsTabular() {
		cleaned := &Parsed{FileType: ft, Table: Clean(parsed.Table), Sheets: parsed.Sheets}
		file.Metadata = ExtractMetadata(cleaned, file.SizeBytes)
		file.Metadata.SourceRows = parsed.Table.NumRows()
	} else {
		file.Metadata = ExtractMetadata(parsed, file.SizeBytes)
	}
	file.Summary = UploadSummary(ft, file.Metadata)

	if err := s.blobs.Put(ctx, file.StoredName, content); err != nil {
		return nil, apperrors.Wrap(err, "failed to store file content")
	}
	if err := s.files.Create(ctx, file); err != nil {
		if delErr := s.blobs.Delete(ctx, file.StoredName); delErr != nil {
			s.logger.Warn("Failed to remove blob %s after record error: %v", file.StoredName, delErr)
		}
		if errors.Is(err, core.ErrQuotaExceeded) {
			return nil, apperrors.QuotaExceeded()
		}
		return nil, apperrors.Wrap(err, "failed to create file record")
	}

	s.logger.Info("Ingested %s (%s, %d bytes, sha %s) for %s in %v",
		file.ID, ft, file.SizeBytes, file.Checksum.Short(), owner, time.Since(start))
	return file, nil
}

// Preview returns the first limit rows or lines of a stored file
func (s *Service) Preview(ctx context.Context, fileID, owner core.ID, limit int) (*dataset.PreviewResult, error) {
	if limit <= 0 {
		return nil, apperrors.InvalidInput("preview limit must be a positive integer")
	}
	file, content, err := s.load(ctx, fileID, owner)
	if err != nil {
		return nil, err
	}
	if err := s.acquire(ctx); err != nil {
		return nil, err
	}
	defer s.parses.Release(1)

	return s.parser.Preview(file.FileType, content, limit, file.Metadata.SourceRows)
}

// Analyze profiles the cleaned table of a stored file. Plain-text files
// get line and word statistics instead.
func (s *Service) Analyze(ctx context.Context, fileID, owner core.ID) (*dataset.AnalysisResult, error) {
	file, parsed, err := s.loadParsed(ctx, fileID, owner)
	if err != nil {
		return nil, err
	}

	if !file.FileType.IsTabular() {
		ts := AnalyzeText(parsed.Lines)
		return &dataset.AnalysisResult{
			FileType:    file.FileType,
			RowCount:    ts.TotalLines,
			ColumnOrder: []string{},
			Columns:     map[string]dataset.ColumnProfile{},
			MemoryBytes: file.Metadata.MemoryBytes,
			Text:        ts,
		}, nil
	}

	result := Analyze(Clean(parsed.Table))
	result.FileType = file.FileType
	return result, nil
}

// Clean returns the cleaned table of a stored tabular file
func (s *Service) Clean(ctx context.Context, fileID, owner core.ID) (*dataset.Table, error) {
	file, parsed, err := s.loadParsed(ctx, fileID, owner)
	if err != nil {
		return nil, err
	}
	if !file.FileType.IsTabular() {
		return nil, apperrors.InvalidInput("plain-text files have no table to clean")
	}
	return Clean(parsed.Table), nil
}

// AdvancedClean derives a cleaned, typed and imputed copy of a stored
// tabular file. The stored file is left as uploaded.
func (s *Service) AdvancedClean(ctx context.Context, fileID, owner core.ID) (*dataset.AdvancedCleanResult, error) {
	file, parsed, err := s.loadParsed(ctx, fileID, owner)
	if err != nil {
		return nil, err
	}
	if !file.FileType.IsTabular() {
		return nil, apperrors.InvalidInput("plain-text files have no table to clean")
	}
	table, report := AdvancedClean(parsed.Table)
	s.logger.Debug("Advanced clean of %s: %s", file.ID, report.Message)
	return &dataset.AdvancedCleanResult{FileID: file.ID, Table: table, Report: report}, nil
}

// Quality scores the raw table of a stored tabular file
func (s *Service) Quality(ctx context.Context, fileID, owner core.ID) (*dataset.QualityReport, error) {
	file, parsed, err := s.loadParsed(ctx, fileID, owner)
	if err != nil {
		return nil, err
	}
	if !file.FileType.IsTabular() {
		return nil, apperrors.InvalidInput("quality reports apply to tabular files only")
	}
	return AssessQuality(parsed.Table), nil
}

// Get returns a file record owned by owner
func (s *Service) Get(ctx context.Context, fileID, owner core.ID) (*dataset.UploadedFile, error) {
	file, err := s.files.GetByID(ctx, fileID)
	if err != nil {
		if core.IsNotFoundError(err) {
			return nil, apperrors.NotFound("file")
		}
		return nil, apperrors.Wrap(err, "failed to load file record")
	}
	// Another user's file is reported exactly like a missing one.
	if !file.OwnedBy(owner) {
		return nil, apperrors.NotFound("file")
	}
	return file, nil
}

// List returns owner's files, newest first
func (s *Service) List(ctx context.Context, owner core.ID, limit, offset int) ([]*dataset.UploadedFile, error) {
	if limit <= 0 || offset < 0 {
		return nil, apperrors.InvalidInput("limit must be positive and offset non-negative")
	}
	files, err := s.files.ListByOwner(ctx, owner, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list files")
	}
	return files, nil
}

// Delete removes a file's record, its history and its bytes
func (s *Service) Delete(ctx context.Context, fileID, owner core.ID) error {
	file, err := s.Get(ctx, fileID, owner)
	if err != nil {
		return err
	}
	if err := s.results.DeleteByFile(ctx, file.ID); err != nil {
		return apperrors.Wrap(err, "failed to delete file history")
	}
	if err := s.files.Delete(ctx, file.ID); err != nil {
		if core.IsNotFoundError(err) {
			return apperrors.NotFound("file")
		}
		return apperrors.Wrap(err, "failed to delete file record")
	}
	if err := s.blobs.Delete(ctx, file.StoredName); err != nil && !core.IsNotFoundError(err) {
		s.logger.Warn("Deleted record %s but failed to remove blob %s: %v", file.ID, file.StoredName, err)
	}
	s.logger.Info("Deleted %s for %s", file.ID, owner)
	return nil
}

// Ask sends a question together with the first rows of the cleaned table
// to the LLM and records the answer in the owner's history
func (s *Service) Ask(ctx context.Context, fileID, owner core.ID, question string) (*dataset.FileResult, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, apperrors.InvalidInput("question cannot be empty")
	}
	return s.askLLM(ctx, fileID, owner, question, dataset.ResultAnswer)
}

// Summarize asks the LLM for a description of the file, stores it in
// history and replaces the file's summary with it
func (s *Service) Summarize(ctx context.Context, fileID, owner core.ID) (*dataset.FileResult, error) {
	result, err := s.askLLM(ctx, fileID, owner, summaryPrompt, dataset.ResultSummary)
	if err != nil {
		return nil, err
	}
	if err := s.files.UpdateSummary(ctx, fileID, result.Content); err != nil {
		s.logger.Warn("Failed to update summary of %s: %v", fileID, err)
	}
	return result, nil
}

// History lists the owner's answers and summaries, newest first
func (s *Service) History(ctx context.Context, owner core.ID, limit, offset int) ([]*dataset.FileResult, error) {
	if limit <= 0 || offset < 0 {
		return nil, apperrors.InvalidInput("limit must be positive and offset non-negative")
	}
	results, err := s.results.ListByOwner(ctx, owner, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list history")
	}
	return results, nil
}

// FileHistory lists the history entries of one file
func (s *Service) FileHistory(ctx context.Context, fileID, owner core.ID) ([]*dataset.FileResult, error) {
	if _, err := s.Get(ctx, fileID, owner); err != nil {
		return nil, err
	}
	results, err := s.results.ListByFile(ctx, fileID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list file history")
	}
	return results, nil
}

func (s *Service) askLLM(ctx context.Context, fileID, owner core.ID, question string, kind dataset.ResultKind) (*dataset.FileResult, error) {
	if s.llm == nil {
		return nil, apperrors.ExternalServiceError("llm", fmt.Errorf("no LLM client configured"))
	}
	file, parsed, err := s.loadParsed(ctx, fileID, owner)
	if err != nil {
		return nil, err
	}

	prompt := buildPrompt(file, parsed, question, s.cfg.ContextRows)
	start := time.Now()
	answer, err := s.llm.ChatCompletion(ctx, s.cfg.LLMModel, prompt, s.cfg.LLMMaxTokens)
	if err != nil {
		return nil, apperrors.ExternalServiceError("llm", err)
	}
	s.logger.Debug("LLM answered for %s in %v (%d chars)", file.ID, time.Since(start), len(answer))

	result := &dataset.FileResult{
		ID:          core.NewID(),
		FileID:      file.ID,
		OwnerID:     owner,
		Kind:        kind,
		Prompt:      question,
		Content:     answer,
		ContentHTML: RenderMarkdown(answer),
		CreatedAt:   core.Now().Time(),
	}
	if err := s.results.Create(ctx, result); err != nil {
		return nil, apperrors.Wrap(err, "failed to record answer")
	}
	return result, nil
}

func buildPrompt(file *dataset.UploadedFile, parsed *Parsed, question string, rows int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are a data analyst. The user uploaded %q (%s).\n\n", file.OriginalFilename, file.Summary)
	if parsed.Table != nil {
		cleaned := Clean(parsed.Table)
		fmt.Fprintf(&b, "First rows of the cleaned data:\n\n%s\n", TableMarkdown(cleaned, rows))
	} else {
		n := rows
		if n > len(parsed.Lines) {
			n = len(parsed.Lines)
		}
		fmt.Fprintf(&b, "First lines of the file:\n\n```\n%s\n```\n\n", strings.Join(parsed.Lines[:n], "\n"))
	}
	fmt.Fprintf(&b, "Question: %s\nAnswer in markdown.", question)
	return b.String()
}

// load fetches an owned record and its bytes
func (s *Service) load(ctx context.Context, fileID, owner core.ID) (*dataset.UploadedFile, []byte, error) {
	file, err := s.Get(ctx, fileID, owner)
	if err != nil {
		return nil, nil, err
	}
	content, err := s.blobs.Get(ctx, file.StoredName)
	if err != nil {
		if core.IsNotFoundError(err) {
			s.logger.Error("Record %s has no stored content %s", file.ID, file.StoredName)
			return nil, nil, apperrors.NotFound("file content")
		}
		return nil, nil, apperrors.Wrap(err, "failed to read file content")
	}
	return file, content, nil
}

// loadParsed loads and reparses a stored file; tables are never cached
func (s *Service) loadParsed(ctx context.Context, fileID, owner core.ID) (*dataset.UploadedFile, *Parsed, error) {
	file, content, err := s.load(ctx, fileID, owner)
	if err != nil {
		return nil, nil, err
	}
	parsed, err := s.parse(ctx, file.FileType, content)
	if err != nil {
		return nil, nil, err
	}
	return file, parsed, nil
}

func (s *Service) parse(ctx context.Context, ft dataset.FileType, content []byte) (*Parsed, error) {
	if err := s.acquire(ctx); err != nil {
		return nil, err
	}
	defer s.parses.Release(1)

	start := time.Now()
	parsed, err := s.parser.Parse(ft, content)
	if err != nil {
		s.logger.Debug("Parse of %s failed after %v: %v", ft, time.Since(start), err)
		return nil, err
	}
	s.logger.Trace("Parsed %s (%d bytes) in %v", ft, len(content), time.Since(start))
	return parsed, nil
}

func (s *Service) acquire(ctx context.Context) error {
	if err := s.parses.Acquire(ctx, 1); err != nil {
		return apperrors.Wrap(err, "request cancelled while waiting for a parse slot")
	}
	return nil
}
