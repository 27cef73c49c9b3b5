package inspect

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/deploymenttheory/go-esp-partition/pkg/app"
	"github.com/deploymenttheory/go-esp-partition/pkg/partitiontable"
)

// LayoutNamespace is the UUID namespace layout IDs are derived in
var LayoutNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/deploymenttheory/go-esp-partition/layout"))

// LayoutID returns a name based UUID for a binary partition table image.
// Equal layouts always get the same ID, whatever file they were read from.
func LayoutID(image []byte) uuid.UUID {
	return uuid.NewSHA1(LayoutNamespace, image)
}

// Handle processes an inspection request
func Handle(ctx *app.Context, req *Request) (*Response, error) {
	// 1. Validate request
	if err := req.Validate(); err != nil {
		return nil, err
	}

	ctx, cancel := ctx.WithDefaultTimeout()
	defer cancel()

	ctx.Log("inspecting partition table", "path", req.InputPath, "format", req.Format)

	// 2. Read and decode the table
	data, imageOffset, err := readTable(ctx, req)
	if err != nil {
		return nil, err
	}

	format := resolveFormat(req.Format, data)
	if req.Image != nil {
		format = partitiontable.FormatBinary
	}
	candidate, err := decode(format, data, req.TableOptions)
	if err != nil {
		return nil, app.WrapTableError(fmt.Sprintf("failed to parse %s as %s", req.InputPath, format), err)
	}

	response := &Response{
		Layout: LayoutInfo{
			Source:         req.InputPath,
			Format:         format.String(),
			Entries:        candidate.Len(),
			ChecksumStatus: candidate.ChecksumStatus().String(),
		},
		Query: SearchQuery{Name: req.Name, Type: req.Type, SubType: req.SubType},
	}
	if req.Image != nil {
		response.Layout.ImageOffset = fmt.Sprintf("%#x", imageOffset)
	}
	if candidate.ChecksumStatus() == partitiontable.ChecksumMismatch || candidate.ChecksumStatus() == partitiontable.ChecksumAbsent {
		ctx.Warn("checksum not verified", "path", req.InputPath, "status", candidate.ChecksumStatus().String())
	}

	// 3. Validate the table, keeping every violation for the report
	table := candidate
	validated, err := candidate.Validate(req.TableOptions...)
	if err != nil {
		for _, v := range candidate.Violations(req.TableOptions...) {
			response.Violations = append(response.Violations, v.Error())
		}
		ctx.Warn("partition table is invalid", "path", req.InputPath, "violations", len(response.Violations))
	} else {
		table = validated
		response.Layout.Valid = true

		image, err := validated.Binary(req.TableOptions...)
		if err != nil {
			return nil, app.WrapTableError("failed to encode partition table", err)
		}
		response.Layout.ID = LayoutID(image).String()
	}

	// 4. Collect the matching partitions
	matches, err := newMatcher(req)
	if err != nil {
		return nil, err
	}
	for _, p := range table.Partitions() {
		if p.HasOffset && p.End() > response.Layout.FlashUsed {
			response.Layout.FlashUsed = p.End()
		}
		if matches(p) {
			response.Partitions = append(response.Partitions, newPartitionResult(p))
		}
	}
	response.TotalFound = len(response.Partitions)

	ctx.Log("inspection completed", "entries", response.Layout.Entries, "found", response.TotalFound, "valid", response.Layout.Valid)
	return response, nil
}

// readTable returns the table bytes of a plain table file or a flash image
func readTable(ctx *app.Context, req *Request) ([]byte, int64, error) {
	if req.Image != nil {
		return app.ReadFlashImage(ctx, req.InputPath, *req.Image)
	}
	data, err := app.ReadInput(ctx, req.InputPath)
	return data, 0, err
}

func resolveFormat(requested string, data []byte) partitiontable.Format {
	switch requested {
	case FormatCSV:
		return partitiontable.FormatCSV
	case FormatBinary:
		return partitiontable.FormatBinary
	}
	return partitiontable.Detect(data)
}

func decode(format partitiontable.Format, data []byte, opts []partitiontable.Option) (*partitiontable.Table, error) {
	if format == partitiontable.FormatBinary {
		return partitiontable.DecodeBinary(data, opts...)
	}
	return partitiontable.ParseCSV(data)
}

// newMatcher builds the partition filter of a validated request
func newMatcher(req *Request) (func(partitiontable.Partition) bool, error) {
	var (
		ty      partitiontable.Type
		subtype partitiontable.SubType
		err     error
	)
	if req.Type != "" {
		if ty, err = parseTypeFilter(req.Type); err != nil {
			return nil, app.NewError(app.ErrCodeInvalidInput, "invalid type filter", err)
		}
	}
	if req.SubType != "" {
		if subtype, err = parseSubTypeFilter(ty, req.SubType); err != nil {
			return nil, app.NewError(app.ErrCodeInvalidInput, "invalid subtype filter", err)
		}
	}

	return func(p partitiontable.Partition) bool {
		if req.Name != "" && p.Name != req.Name {
			return false
		}
		if req.Type != "" && p.Type != ty {
			return false
		}
		if req.SubType != "" && p.SubType != subtype {
			return false
		}
		return true
	}, nil
}
