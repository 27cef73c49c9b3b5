package convert

import (
	"fmt"

	"github.com/deploymenttheory/go-esp-partition/pkg/app"
	"github.com/deploymenttheory/go-esp-partition/pkg/partitiontable"
)

// Handle processes a conversion request. The input must be a valid table;
// invalid tables are never encoded.
func Handle(ctx *app.Context, req *Request) (*Response, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	ctx, cancel := ctx.WithDefaultTimeout()
	defer cancel()

	var (
		data []byte
		err  error
	)
	if req.Image != nil {
		data, _, err = app.ReadFlashImage(ctx, req.InputPath, *req.Image)
	} else {
		data, err = app.ReadInput(ctx, req.InputPath)
	}
	if err != nil {
		return nil, err
	}

	inputFormat := partitiontable.Detect(data)
	outputFormat := partitiontable.FormatCSV
	switch req.To {
	case FormatBinary:
		outputFormat = partitiontable.FormatBinary
	case FormatAuto:
		if inputFormat == partitiontable.FormatCSV {
			outputFormat = partitiontable.FormatBinary
		}
	}

	ctx.Log("converting partition table", "path", req.InputPath, "from", inputFormat.String(), "to", outputFormat.String())

	opts := append(append([]partitiontable.Option{}, req.TableOptions...), partitiontable.WithHeader(req.Header))
	table, err := partitiontable.Parse(data, opts...)
	if err != nil {
		return nil, app.WrapTableError(fmt.Sprintf("failed to load %s", req.InputPath), err)
	}

	var encoded []byte
	if outputFormat == partitiontable.FormatBinary {
		encoded, err = table.Binary(opts...)
	} else {
		encoded, err = table.CSV(opts...)
	}
	if err != nil {
		return nil, app.WrapTableError(fmt.Sprintf("failed to encode %s", outputFormat), err)
	}

	response := &Response{
		InputFormat:  inputFormat.String(),
		OutputFormat: outputFormat.String(),
		OutputPath:   req.OutputPath,
		Entries:      table.Len(),
		BytesWritten: len(encoded),
	}

	if req.OutputPath == "" {
		response.Data = encoded
		return response, nil
	}
	if err := app.WriteOutput(ctx, req.OutputPath, encoded); err != nil {
		return nil, err
	}

	ctx.Log("conversion completed", "output", req.OutputPath, "bytes", len(encoded))
	return response, nil
}
