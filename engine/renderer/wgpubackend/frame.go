package wgpubackend

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy2d/common"
	"github.com/Carmen-Shannon/oxy2d/engine/renderer"
	"github.com/cogentcore/webgpu/wgpu"
)

var errNoFrame = errors.New("draw to the screen outside BeginFrame/EndFrame")

func (b *backend) BeginFrame(clearColor common.Color) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameSurface != nil {
		return fmt.Errorf("previous frame surface not yet presented")
	}
	b.clearValue = toWGPUColor(clearColor)
	clear(b.cleared)

	if b.width <= 0 || b.height <= 0 {
		return nil
	}

	surfaceTexture, err := b.surface.GetCurrentTexture()
	if err != nil {
		return err
	}
	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		surfaceTexture.Release()
		return err
	}
	b.frameSurface = surfaceTexture
	b.frameView = view
	return nil
}

// Draw encodes each command in its own render pass and submits it immediately, so queued
// buffer writes land in order between draws. The first pass into a target clears it.
func (b *backend) Draw(cmd renderer.DrawCommand) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	cp, ok := cmd.Pipeline.Handle().(*compiledPipeline)
	if !ok {
		return fmt.Errorf("pipeline %s is not registered", cmd.Pipeline.Key())
	}
	vb, ok := b.buffers[cmd.VertexBuffer]
	if !ok {
		return fmt.Errorf("draw with unknown vertex buffer %d", cmd.VertexBuffer)
	}
	ib, ok := b.buffers[cmd.IndexBuffer]
	if !ok {
		return fmt.Errorf("draw with unknown index buffer %d", cmd.IndexBuffer)
	}

	view, err := b.targetView(cmd.Target)
	if err != nil {
		return err
	}
	if view == nil {
		// minimized surface
		return nil
	}

	if cp.uniform != nil && len(cmd.Uniforms) > 0 {
		b.queue.WriteBuffer(cp.uniform, 0, cmd.Uniforms)
	}

	bindGroups := make([]*wgpu.BindGroup, len(cp.layouts))
	for g, bg := range cp.staticGroups {
		bindGroups[g] = bg
	}
	for slot := range cp.slots {
		var h renderer.TextureHandle
		if slot < len(cmd.Textures) {
			h = cmd.Textures[slot]
		}
		bg, err := b.slotGroup(cp, slot, h)
		if err != nil {
			return err
		}
		bindGroups[cp.slots[slot].Group] = bg
	}

	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		return err
	}
	defer encoder.Release()

	pass := encoder.BeginRenderPass(b.passDescriptor(cmd.Target, view))
	pass.SetPipeline(cp.render)
	for g, bg := range bindGroups {
		if bg != nil {
			pass.SetBindGroup(uint32(g), bg, nil)
		}
	}
	if !cmd.Viewport.IsZero() {
		v := cmd.Viewport
		pass.SetViewport(v.X, v.Y, v.Width, v.Height, 0, 1)
	}
	pass.SetVertexBuffer(0, vb.buffer, 0, wgpu.WholeSize)
	pass.SetIndexBuffer(ib.buffer, wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
	pass.DrawIndexed(cmd.IndexCount, 1, 0, 0, 0)
	pass.End()

	return b.submit(encoder)
}

func (b *backend) EndFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameView == nil || b.cleared[renderer.ScreenTarget] {
		return nil
	}

	// nothing was drawn to the screen, it still has to be cleared
	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		return err
	}
	defer encoder.Release()
	pass := encoder.BeginRenderPass(b.passDescriptor(renderer.ScreenTarget, b.frameView))
	pass.End()
	return b.submit(encoder)
}

func (b *backend) Present() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameSurface == nil {
		return
	}
	b.surface.Present()

	if b.frameView != nil {
		b.frameView.Release()
		b.frameView = nil
	}
	b.frameSurface.Release()
	b.frameSurface = nil
}

// targetView returns the color attachment for a target. A nil view with a nil error means
// the screen is currently unavailable. Must be called with mu held.
func (b *backend) targetView(target renderer.TextureHandle) (*wgpu.TextureView, error) {
	if target == renderer.ScreenTarget {
		if b.frameView == nil && b.width > 0 && b.height > 0 {
			return nil, errNoFrame
		}
		return b.frameView, nil
	}
	tex, ok := b.textures[target]
	if !ok {
		return nil, fmt.Errorf("unknown render target %d", target)
	}
	if !tex.desc.RenderTarget {
		return nil, fmt.Errorf("texture %d was not created as a render target", target)
	}
	return tex.view, nil
}

// passDescriptor marks the target cleared. Must be called with mu held.
func (b *backend) passDescriptor(target renderer.TextureHandle, view *wgpu.TextureView) *wgpu.RenderPassDescriptor {
	loadOp := wgpu.LoadOpLoad
	if !b.cleared[target] {
		loadOp = wgpu.LoadOpClear
		b.cleared[target] = true
	}
	return &wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:       view,
				LoadOp:     loadOp,
				StoreOp:    wgpu.StoreOpStore,
				ClearValue: b.clearValue,
			},
		},
	}
}

func (b *backend) submit(encoder *wgpu.CommandEncoder) error {
	commandBuffer, err := encoder.Finish(nil)
	if err != nil {
		return err
	}
	b.queue.Submit(commandBuffer)
	commandBuffer.Release()
	return nil
}
