//go:build !nogpu

package gpu

import (
	"encoding/binary"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"
	"unsafe"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	// Import Vulkan backend so it registers via init().
	_ "github.com/gogpu/wgpu/hal/vulkan"

	vibegi "github.com/Liam-Griffiths/liams-vibe-gi"
)

// pipeline bundles the HAL objects of one compute pipeline.
type pipeline struct {
	shader     hal.ShaderModule
	bindLayout hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	compute    hal.ComputePipeline
	readBufs   int // read-only storage bindings after the uniform
}

// Accelerator executes engine passes as wgpu/hal compute dispatches. It
// implements the vibegi.GPUAccelerator interface.
//
// Every pass is a full round trip: inputs are uploaded to storage buffers,
// the pipeline dispatches one thread per destination pixel, and the result
// is read back into the CPU-side target so the software path stays
// authoritative across fallbacks.
type Accelerator struct {
	mu sync.Mutex

	instance hal.Instance
	device   hal.Device
	queue    hal.Queue

	cascade   pipeline
	bilateral pipeline
	ssao      pipeline

	// dummy stands in for absent optional bindings (coarser, history).
	dummy hal.Buffer

	gpuReady bool
}

var _ vibegi.GPUAccelerator = (*Accelerator)(nil)

// NewAccelerator creates an uninitialized accelerator. Init must run before
// any pass dispatch; RegisterAccelerator does this.
func NewAccelerator() *Accelerator { return &Accelerator{} }

// Name implements vibegi.GPUAccelerator.
func (a *Accelerator) Name() string { return "wgpu-compute" }

// SetLogger stores the logger vibegi.SetLogger propagates.
func (a *Accelerator) SetLogger(l *slog.Logger) { setLogger(l) }

// Init acquires a GPU device and builds the pass pipelines. A failed GPU
// init is not an error: the accelerator registers anyway and every pass
// reports ErrFallbackToCPU.
func (a *Accelerator) Init() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.initGPU(); err != nil {
		slogger().Warn("GPU init failed, passes fall back to CPU", "err", err)
	}
	return nil
}

// Close releases all GPU resources.
func (a *Accelerator) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.destroyPipelines()
	if a.dummy != nil && a.device != nil {
		a.device.DestroyBuffer(a.dummy)
		a.dummy = nil
	}
	if a.device != nil {
		a.device.Destroy()
		a.device = nil
	}
	if a.instance != nil {
		a.instance.Destroy()
		a.instance = nil
	}
	a.queue = nil
	a.gpuReady = false
}

// CanAccelerate implements vibegi.GPUAccelerator.
func (a *Accelerator) CanAccelerate(op vibegi.AcceleratedOp) bool {
	a.mu.Lock()
	ready := a.gpuReady
	a.mu.Unlock()
	return ready && op&(vibegi.AccelCascade|vibegi.AccelBlur|vibegi.AccelSSAO) != 0
}

func (a *Accelerator) initGPU() error {
	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return fmt.Errorf("vulkan backend not available")
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return fmt.Errorf("create instance: %w", err)
	}
	a.instance = instance
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		return fmt.Errorf("no GPU adapters found")
	}
	var selected *hal.ExposedAdapter
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}
	if selected == nil {
		selected = &adapters[0]
	}
	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		return fmt.Errorf("open device: %w", err)
	}
	a.device = openDev.Device
	a.queue = openDev.Queue

	if err := a.createPipelines(); err != nil {
		a.device.Destroy()
		a.device = nil
		a.queue = nil
		return fmt.Errorf("create pipelines: %w", err)
	}

	a.dummy, err = a.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "gi_dummy", Size: 16,
		Usage: gputypes.BufferUsageStorage | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		a.destroyPipelines()
		a.device.Destroy()
		a.device = nil
		a.queue = nil
		return fmt.Errorf("create dummy buffer: %w", err)
	}

	a.gpuReady = true
	slogger().Info("GPU accelerator initialized", "adapter", selected.Info.Name)
	return nil
}

func (a *Accelerator) createPipelines() error {
	var err error
	a.cascade, err = a.createPipeline("gi_cascade", cascadeShaderSource, 7)
	if err != nil {
		return err
	}
	a.bilateral, err = a.createPipeline("gi_bilateral", bilateralShaderSource, 3)
	if err != nil {
		return err
	}
	a.ssao, err = a.createPipeline("gi_ssao", ssaoShaderSource, 4)
	if err != nil {
		return err
	}
	return nil
}

// createPipeline builds a compute pipeline whose bind group is one uniform
// buffer, readBufs read-only storage buffers, then one read-write storage
// destination.
func (a *Accelerator) createPipeline(label, wgslSource string, readBufs int) (pipeline, error) {
	var p pipeline
	p.readBufs = readBufs

	shader, err := createShaderModule(a.device, label, wgslSource)
	if err != nil {
		return p, err
	}
	p.shader = shader

	entries := make([]gputypes.BindGroupLayoutEntry, 0, readBufs+2)
	entries = append(entries, gputypes.BindGroupLayoutEntry{
		Binding: 0, Visibility: gputypes.ShaderStageCompute,
		Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
	})
	for i := 0; i < readBufs; i++ {
		entries = append(entries, gputypes.BindGroupLayoutEntry{
			Binding: uint32(i + 1), Visibility: gputypes.ShaderStageCompute,
			Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeReadOnlyStorage},
		})
	}
	entries = append(entries, gputypes.BindGroupLayoutEntry{
		Binding: uint32(readBufs + 1), Visibility: gputypes.ShaderStageCompute,
		Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeStorage},
	})

	p.bindLayout, err = a.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: label + "_bind_layout", Entries: entries,
	})
	if err != nil {
		return p, fmt.Errorf("%s bind group layout: %w", label, err)
	}

	p.pipeLayout, err = a.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label: label + "_pipe_layout", BindGroupLayouts: []hal.BindGroupLayout{p.bindLayout},
	})
	if err != nil {
		return p, fmt.Errorf("%s pipeline layout: %w", label, err)
	}

	p.compute, err = a.device.CreateComputePipeline(&hal.ComputePipelineDescriptor{
		Label: label + "_pipeline", Layout: p.pipeLayout,
		Compute: hal.ComputeState{Module: p.shader, EntryPoint: "main"},
	})
	if err != nil {
		return p, fmt.Errorf("%s compute pipeline: %w", label, err)
	}
	return p, nil
}

func (a *Accelerator) destroyPipeline(p *pipeline) {
	if a.device == nil {
		return
	}
	if p.compute != nil {
		a.device.DestroyComputePipeline(p.compute)
		p.compute = nil
	}
	if p.pipeLayout != nil {
		a.device.DestroyPipelineLayout(p.pipeLayout)
		p.pipeLayout = nil
	}
	if p.bindLayout != nil {
		a.device.DestroyBindGroupLayout(p.bindLayout)
		p.bindLayout = nil
	}
	if p.shader != nil {
		a.device.DestroyShaderModule(p.shader)
		p.shader = nil
	}
}

func (a *Accelerator) destroyPipelines() {
	a.destroyPipeline(&a.cascade)
	a.destroyPipeline(&a.bilateral)
	a.destroyPipeline(&a.ssao)
}

// CascadePass implements vibegi.GPUAccelerator.
func (a *Accelerator) CascadePass(dst vibegi.PassTarget, args vibegi.CascadeArgs) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.gpuReady {
		return vibegi.ErrFallbackToCPU
	}

	gbW := uint32(args.GBuffer.Position.Width)
	gbH := uint32(args.GBuffer.Position.Height)
	params := cascadeParams{
		DstW: uint32(dst.Width), DstH: uint32(dst.Height),
		GBufW: gbW, GBufH: gbH,
		MinDist: args.Level.MinDist, MaxDist: args.Level.MaxDist,
		Focal:            args.Focal,
		Aspect:           float32(gbH) / float32(gbW),
		LightPos:         [3]float32{args.Light.Position.X, args.Light.Position.Y, args.Light.Position.Z},
		LightRadius:      args.Light.Radius,
		LightColor:       [3]float32{args.Light.Color.X, args.Light.Color.Y, args.Light.Color.Z},
		MaxHistoryWeight: args.MaxHistoryWeight,
		Frame:            uint32(args.Frame),
	}
	if args.Coarser != nil {
		params.CoarserW = uint32(args.Coarser.Width)
		params.CoarserH = uint32(args.Coarser.Height)
		params.Flags |= 1
	} else {
		params.CoarserW, params.CoarserH = 1, 1
	}
	if args.UseHistory && args.History != nil {
		params.HistW = uint32(args.History.Width)
		params.HistH = uint32(args.History.Height)
		params.Flags |= 2
	} else {
		params.HistW, params.HistH = 1, 1
	}

	reads := [][]float32{
		args.GBuffer.Position.Data,
		args.GBuffer.Normal.Data,
		args.GBuffer.Albedo.Data,
		args.GBuffer.Emission.Data,
		optionalData(args.Coarser),
		optionalData(args.History),
		args.GBuffer.Depth.Data,
	}
	return a.run(&a.cascade, "gi_cascade",
		structBytes(unsafe.Pointer(&params), unsafe.Sizeof(params)),
		reads, dst, uint32(dst.Width), uint32(dst.Height))
}

// BlurPass implements vibegi.GPUAccelerator.
func (a *Accelerator) BlurPass(dst vibegi.PassTarget, args vibegi.BlurArgs) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.gpuReady {
		return vibegi.ErrFallbackToCPU
	}

	params := blurParams{
		W: uint32(dst.Width), H: uint32(dst.Height),
		GBufW: uint32(args.GBuffer.Position.Width),
		GBufH: uint32(args.GBuffer.Position.Height),
	}
	if args.Horizontal {
		params.Horizontal = 1
	}

	reads := [][]float32{
		args.GBuffer.Position.Data,
		args.GBuffer.Normal.Data,
		args.Input.Data,
	}
	return a.run(&a.bilateral, "gi_bilateral",
		structBytes(unsafe.Pointer(&params), unsafe.Sizeof(params)),
		reads, dst, uint32(dst.Width), uint32(dst.Height))
}

// SSAOPass implements vibegi.GPUAccelerator.
func (a *Accelerator) SSAOPass(dst vibegi.PassTarget, args vibegi.SSAOArgs) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.gpuReady {
		return vibegi.ErrFallbackToCPU
	}
	if len(args.Kernel) == 0 || args.NoiseDim <= 0 {
		return vibegi.ErrFallbackToCPU
	}

	params := ssaoParams{
		W: uint32(dst.Width), H: uint32(dst.Height),
		KernelSize: uint32(len(args.Kernel)),
		NoiseDim:   uint32(args.NoiseDim),
		View:       args.View,
		Proj:       args.Projection,
		Radius:     args.Radius,
		Bias:       args.Bias,
	}

	reads := [][]float32{
		packVec3s(args.Kernel),
		packVec3s(args.Noise),
		args.GBuffer.Position.Data,
		args.GBuffer.Normal.Data,
	}
	return a.run(&a.ssao, "gi_ssao",
		structBytes(unsafe.Pointer(&params), unsafe.Sizeof(params)),
		reads, dst, uint32(dst.Width), uint32(dst.Height))
}

// run uploads the inputs, dispatches one thread per destination pixel, and
// reads the result back into dst.Data. Any HAL failure is wrapped; callers
// treat every error as a CPU fallback signal.
func (a *Accelerator) run(p *pipeline, label string, uniformBytes []byte, reads [][]float32, dst vibegi.PassTarget, w, h uint32) error {
	uniformBuf, err := a.device.CreateBuffer(&hal.BufferDescriptor{
		Label: label + "_params", Size: uint64(len(uniformBytes)),
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create uniform buffer: %w", err)
	}
	defer a.device.DestroyBuffer(uniformBuf)
	a.queue.WriteBuffer(uniformBuf, 0, uniformBytes)

	entries := make([]gputypes.BindGroupEntry, 0, len(reads)+2)
	entries = append(entries, gputypes.BindGroupEntry{
		Binding:  0,
		Resource: gputypes.BufferBinding{Buffer: uniformBuf.NativeHandle(), Offset: 0, Size: uint64(len(uniformBytes))},
	})

	readBufs := make([]hal.Buffer, 0, len(reads))
	defer func() {
		for _, b := range readBufs {
			a.device.DestroyBuffer(b)
		}
	}()
	for i, data := range reads {
		if data == nil {
			entries = append(entries, gputypes.BindGroupEntry{
				Binding:  uint32(i + 1),
				Resource: gputypes.BufferBinding{Buffer: a.dummy.NativeHandle(), Offset: 0, Size: 16},
			})
			continue
		}
		raw := float32Bytes(data)
		buf, err := a.device.CreateBuffer(&hal.BufferDescriptor{
			Label: label + "_in", Size: uint64(len(raw)),
			Usage: gputypes.BufferUsageStorage | gputypes.BufferUsageCopyDst,
		})
		if err != nil {
			return fmt.Errorf("create input buffer %d: %w", i, err)
		}
		readBufs = append(readBufs, buf)
		a.queue.WriteBuffer(buf, 0, raw)
		entries = append(entries, gputypes.BindGroupEntry{
			Binding:  uint32(i + 1),
			Resource: gputypes.BufferBinding{Buffer: buf.NativeHandle(), Offset: 0, Size: uint64(len(raw))},
		})
	}

	dstSize := uint64(len(dst.Data) * 4)
	dstBuf, err := a.device.CreateBuffer(&hal.BufferDescriptor{
		Label: label + "_out", Size: dstSize,
		Usage: gputypes.BufferUsageStorage | gputypes.BufferUsageCopySrc | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create output buffer: %w", err)
	}
	defer a.device.DestroyBuffer(dstBuf)

	stagingBuf, err := a.device.CreateBuffer(&hal.BufferDescriptor{
		Label: label + "_staging", Size: dstSize,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create staging buffer: %w", err)
	}
	defer a.device.DestroyBuffer(stagingBuf)

	entries = append(entries, gputypes.BindGroupEntry{
		Binding:  uint32(len(reads) + 1),
		Resource: gputypes.BufferBinding{Buffer: dstBuf.NativeHandle(), Offset: 0, Size: dstSize},
	})

	bindGroup, err := a.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label: label + "_bind", Layout: p.bindLayout, Entries: entries,
	})
	if err != nil {
		return fmt.Errorf("create bind group: %w", err)
	}
	defer a.device.DestroyBindGroup(bindGroup)

	encoder, err := a.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: label + "_encoder"})
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding(label); err != nil {
		return fmt.Errorf("begin encoding: %w", err)
	}
	pass := encoder.BeginComputePass(&hal.ComputePassDescriptor{Label: label})
	pass.SetPipeline(p.compute)
	pass.SetBindGroup(0, bindGroup, nil)
	pass.Dispatch((w+7)/8, (h+7)/8, 1)
	pass.End()
	encoder.CopyBufferToBuffer(dstBuf, stagingBuf, []hal.BufferCopy{
		{SrcOffset: 0, DstOffset: 0, Size: dstSize},
	})
	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("end encoding: %w", err)
	}
	defer a.device.FreeCommandBuffer(cmdBuf)

	fence, err := a.device.CreateFence()
	if err != nil {
		return fmt.Errorf("create fence: %w", err)
	}
	defer a.device.DestroyFence(fence)
	if err := a.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	fenceOK, err := a.device.Wait(fence, 1, 5*time.Second)
	if err != nil || !fenceOK {
		return fmt.Errorf("wait for GPU: ok=%v err=%w", fenceOK, err)
	}

	readback := make([]byte, dstSize)
	if err := a.queue.ReadBuffer(stagingBuf, 0, readback); err != nil {
		return fmt.Errorf("readback: %w", err)
	}
	for i := range dst.Data {
		dst.Data[i] = math.Float32frombits(binary.LittleEndian.Uint32(readback[i*4:]))
	}
	return nil
}

// Uniform layouts. Field order and padding mirror the WGSL structs.

type cascadeParams struct {
	DstW, DstH         uint32
	GBufW, GBufH       uint32
	CoarserW, CoarserH uint32
	HistW, HistH       uint32
	MinDist, MaxDist   float32
	Focal, Aspect      float32
	LightPos           [3]float32
	LightRadius        float32
	LightColor         [3]float32
	MaxHistoryWeight   float32
	Frame              uint32
	Flags              uint32
	Pad0, Pad1         uint32
}

type blurParams struct {
	W, H         uint32
	GBufW, GBufH uint32
	Horizontal   uint32
	Pad0         uint32
	Pad1         uint32
	Pad2         uint32
}

type ssaoParams struct {
	W, H       uint32
	KernelSize uint32
	NoiseDim   uint32
	View       vibegi.Mat4
	Proj       vibegi.Mat4
	Radius     float32
	Bias       float32
	Pad0       float32
	Pad1       float32
}

func structBytes(ptr unsafe.Pointer, size uintptr) []byte {
	return unsafe.Slice((*byte)(ptr), size) //nolint:gosec // safe struct serialization
}

func float32Bytes(data []float32) []byte {
	out := make([]byte, len(data)*4)
	for i, v := range data {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(v))
	}
	return out
}

// packVec3s widens Vec3 values to the 16-byte stride WGSL uses for
// array<vec4<f32>>.
func packVec3s(vs []vibegi.Vec3) []float32 {
	out := make([]float32, len(vs)*4)
	for i, v := range vs {
		out[i*4] = v.X
		out[i*4+1] = v.Y
		out[i*4+2] = v.Z
	}
	return out
}

func optionalData(t *vibegi.PassTarget) []float32 {
	if t == nil {
		return nil
	}
	return t.Data
}
